package superAdminController

import (
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardStats is the admin overview. Week and month windows start at the
// beginning of the current calendar week/month in server time.
type DashboardStats struct {
	TotalUsers           int64   `json:"totalUsers"`
	NewUsersThisWeek     int64   `json:"newUsersThisWeek"`
	NewUsersThisMonth    int64   `json:"newUsersThisMonth"`
	ActiveModules        int64   `json:"activeModules"`
	TotalEnrollments     int64   `json:"totalEnrollments"`
	PaidEnrollments      int64   `json:"paidEnrollments"`
	EnrollmentsThisMonth int64   `json:"enrollmentsThisMonth"`
	Revenue              float64 `json:"revenue"`
	AttemptsThisWeek     int64   `json:"attemptsThisWeek"`
	PassedAttempts       int64   `json:"passedAttempts"`
	CertifiedUsers       int64   `json:"certifiedUsers"`
	PendingCertificates  int64   `json:"pendingCertificates"`
	UnreadMessages       int64   `json:"unreadMessages"`
}

// CollectStats runs the dashboard queries concurrently.
func CollectStats(db *gorm.DB, at time.Time) (DashboardStats, error) {
	var stats DashboardStats
	clock := now.With(at)
	weekStart := clock.BeginningOfWeek()
	monthStart := clock.BeginningOfMonth()

	count := func(dest *int64, model interface{}, query string, args ...interface{}) func() error {
		return func() error {
			q := db.Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dest).Error
		}
	}

	var g errgroup.Group
	g.Go(count(&stats.TotalUsers, &models.User{}, ""))
	g.Go(count(&stats.NewUsersThisWeek, &models.User{}, "created_at >= ?", weekStart))
	g.Go(count(&stats.NewUsersThisMonth, &models.User{}, "created_at >= ?", monthStart))
	g.Go(count(&stats.ActiveModules, &models.Module{}, "is_active = ?", true))
	g.Go(count(&stats.TotalEnrollments, &models.Enrollment{}, ""))
	g.Go(count(&stats.PaidEnrollments, &models.Enrollment{}, "payment_status = ?", models.PaymentCompleted))
	g.Go(count(&stats.EnrollmentsThisMonth, &models.Enrollment{}, "created_at >= ?", monthStart))
	g.Go(count(&stats.AttemptsThisWeek, &models.TestAttempt{}, "created_at >= ?", weekStart))
	g.Go(count(&stats.PassedAttempts, &models.TestAttempt{}, "passed = ?", true))
	g.Go(count(&stats.CertifiedUsers, &models.Profile{},
		"test_completed = ? AND certificate_available_at <= ?", true, at))
	g.Go(count(&stats.PendingCertificates, &models.Profile{},
		"test_completed = ? AND certificate_available_at > ?", true, at))
	g.Go(count(&stats.UnreadMessages, &models.ContactMessage{}, "is_read = ?", false))
	g.Go(func() error {
		return db.Model(&models.Enrollment{}).
			Where("payment_status = ?", models.PaymentCompleted).
			Select("COALESCE(SUM(amount_paid), 0)").
			Scan(&stats.Revenue).Error
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func GetDashboardStats(c *fiber.Ctx) error {
	stats, err := CollectStats(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", stats)
}

type exportRow struct {
	ID                 uint
	UserName           string
	UserEmail          string
	ModuleTitle        string
	PaymentStatus      string
	AmountPaid         float64
	ProgressPercentage int
	CreatedAt          time.Time
}

var exportHeader = []interface{}{
	"Enrollment ID", "Name", "Email", "Module", "Payment Status", "Amount Paid", "Progress %", "Enrolled At",
}

// BuildEnrollmentWorkbook writes one sheet with a row per enrollment,
// optionally restricted to a module.
func BuildEnrollmentWorkbook(db *gorm.DB, moduleID uint) (*excelize.File, error) {
	q := db.Table("enrollments").
		Select("enrollments.id, users.name AS user_name, users.email AS user_email, modules.title AS module_title, " +
			"enrollments.payment_status, enrollments.amount_paid, enrollments.progress_percentage, enrollments.created_at").
		Joins("JOIN users ON users.id = enrollments.user_id").
		Joins("JOIN modules ON modules.id = enrollments.module_id").
		Order("enrollments.id")
	if moduleID != 0 {
		q = q.Where("enrollments.module_id = ?", moduleID)
	}
	var rows []exportRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	const sheet = "Enrollments"
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []interface{}{
			r.ID, r.UserName, r.UserEmail, r.ModuleTitle, r.PaymentStatus,
			r.AmountPaid, r.ProgressPercentage, r.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// ExportEnrollments streams the enrollment workbook; ?moduleId= narrows it.
func ExportEnrollments(c *fiber.Ctx) error {
	moduleID, _ := validators.QueryID(c, "moduleId")

	f, err := BuildEnrollmentWorkbook(database.Database.Db, moduleID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	name := "enrollments"
	if moduleID != 0 {
		name += "-module-" + strconv.FormatUint(uint64(moduleID), 10)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, name, time.Now().Format("20060102")))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

package progressController

import (
	"academy/apperr"
	"academy/logger"
	"academy/models"
	"academy/progress"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxWriteAttempts bounds the optimistic retry loop on enrollment progress.
const maxWriteAttempts = 3

var errWriteConflict = apperr.Conflict("Progress was updated concurrently, please retry!")

// contentPath locates a content item inside the module tree.
type contentPath struct {
	ContentID   uint
	SubTopicID  uint
	LevelID     uint
	ModuleID    uint
	IsPublished bool
}

type subTopicPath struct {
	SubTopicID uint
	LevelID    uint
	ModuleID   uint
	IsActive   bool
}

func findContentPath(db *gorm.DB, contentID uint) (contentPath, error) {
	var p contentPath
	err := db.Table("contents").
		Select("contents.id AS content_id, contents.sub_topic_id, sub_topics.level_id, levels.module_id, contents.is_published").
		Joins("JOIN sub_topics ON sub_topics.id = contents.sub_topic_id").
		Joins("JOIN levels ON levels.id = sub_topics.level_id").
		Where("contents.id = ?", contentID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, apperr.NotFound("Content not found!")
	}
	return p, err
}

func findSubTopicPath(db *gorm.DB, subTopicID uint) (subTopicPath, error) {
	var p subTopicPath
	err := db.Table("sub_topics").
		Select("sub_topics.id AS sub_topic_id, sub_topics.level_id, levels.module_id, sub_topics.is_active").
		Joins("JOIN levels ON levels.id = sub_topics.level_id").
		Where("sub_topics.id = ?", subTopicID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, apperr.NotFound("Sub-topic not found!")
	}
	return p, err
}

// RequirePaidEnrollment returns the user's enrollment in the module, failing
// with 403 when there is none or payment has not completed.
func RequirePaidEnrollment(db *gorm.DB, userID, moduleID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return enrollment, apperr.Forbidden("You are not enrolled in this module!")
	}
	if err != nil {
		return enrollment, err
	}
	if !enrollment.Paid() {
		return enrollment, apperr.Forbidden("Payment for this module is not completed!")
	}
	return enrollment, nil
}

func levelTree(level models.Level, hasTest bool) progress.LevelTree {
	tree := progress.LevelTree{LevelID: level.ID, HasTest: hasTest}
	for _, st := range level.SubTopics {
		node := progress.SubTopicNode{ID: st.ID, OrderIndex: st.OrderIndex, IsActive: st.IsActive}
		for _, ct := range st.Contents {
			node.Contents = append(node.Contents, progress.ContentNode{
				ID:          ct.ID,
				IsPublished: ct.IsPublished,
				IsRequired:  ct.IsRequired,
			})
		}
		tree.SubTopics = append(tree.SubTopics, node)
	}
	return tree
}

func levelsWithTests(db *gorm.DB, levelIDs []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	if len(levelIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := db.Model(&models.LevelTest{}).
		Where("level_id IN ? AND is_active = ?", levelIDs, true).
		Pluck("level_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// LoadLevelTree reads one level with its sub-topics and content.
func LoadLevelTree(db *gorm.DB, levelID uint) (progress.LevelTree, models.Level, error) {
	var level models.Level
	err := db.Preload("SubTopics.Contents").First(&level, levelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progress.LevelTree{}, level, apperr.NotFound("Level not found!")
	}
	if err != nil {
		return progress.LevelTree{}, level, err
	}
	tests, err := levelsWithTests(db, []uint{level.ID})
	if err != nil {
		return progress.LevelTree{}, level, err
	}
	return levelTree(level, tests[level.ID]), level, nil
}

// LoadModuleTrees reads every active level of a module in display order.
func LoadModuleTrees(db *gorm.DB, moduleID uint) ([]progress.LevelTree, error) {
	var levels []models.Level
	if err := db.Where("module_id = ? AND is_active = ?", moduleID, true).
		Preload("SubTopics.Contents").
		Order("order_index ASC, id ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(levels))
	for _, l := range levels {
		ids = append(ids, l.ID)
	}
	tests, err := levelsWithTests(db, ids)
	if err != nil {
		return nil, err
	}

	trees := make([]progress.LevelTree, 0, len(levels))
	for _, l := range levels {
		trees = append(trees, levelTree(l, tests[l.ID]))
	}
	return trees, nil
}

func treeFor(trees []progress.LevelTree, levelID uint) (progress.LevelTree, bool) {
	for _, t := range trees {
		if t.LevelID == levelID {
			return t, true
		}
	}
	return progress.LevelTree{}, false
}

// Snapshot decodes an enrollment's progress column for reading. A record that
// cannot be decoded is logged and treated as empty; writers go through
// mutateProgress, which refuses to overwrite it.
func Snapshot(e models.Enrollment) progress.Snapshot {
	snap, err := progress.Parse(e.CompletedSubTopics)
	if err != nil {
		logger.Log.Warn("unreadable progress snapshot", "enrollment_id", e.ID, "error", err)
		return progress.New()
	}
	return snap
}

// mutateProgress applies fn to the enrollment snapshot, recomputes the module
// percentage and writes both back guarded by the row version. A lost race is
// retried from a fresh read.
func mutateProgress(db *gorm.DB, enrollmentID uint, trees []progress.LevelTree, fn func(*progress.Snapshot) error) (progress.Snapshot, int, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var enrollment models.Enrollment
		if err := db.First(&enrollment, enrollmentID).Error; err != nil {
			return progress.Snapshot{}, 0, err
		}

		snap, err := progress.Parse(enrollment.CompletedSubTopics)
		if err != nil {
			return progress.Snapshot{}, 0, fmt.Errorf("enrollment %d progress: %w", enrollment.ID, err)
		}
		if err := fn(&snap); err != nil {
			return progress.Snapshot{}, 0, err
		}
		pct := progress.ModuleProgress(trees, snap)
		raw, err := snap.Marshal()
		if err != nil {
			return progress.Snapshot{}, 0, err
		}

		res := db.Model(&models.Enrollment{}).
			Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
			Updates(map[string]interface{}{
				"completed_sub_topics": datatypes.JSON(raw),
				"progress_percentage":  pct,
				"version":              gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return progress.Snapshot{}, 0, res.Error
		}
		if res.RowsAffected == 1 {
			return snap, pct, nil
		}
		logger.Log.Debug("progress write conflict", "enrollment_id", enrollment.ID, "attempt", attempt)
	}
	return progress.Snapshot{}, 0, errWriteConflict
}

// ContentResult is returned after a content item is marked.
type ContentResult struct {
	Entry              progress.Entry `json:"entry"`
	SubTopicID         uint           `json:"subTopicId"`
	SubTopicState      progress.State `json:"subTopicState"`
	ProgressPercentage int            `json:"progressPercentage"`
}

// MarkContent records completion of one content item for the user.
// Completing requires the owning sub-topic to be unlocked. Clearing it also
// withdraws the sub-topic acknowledgement, since the sub-topic can no longer
// be complete.
func MarkContent(db *gorm.DB, userID, contentID uint, completed bool, now time.Time) (ContentResult, error) {
	path, err := findContentPath(db, contentID)
	if err != nil {
		return ContentResult{}, err
	}
	if !path.IsPublished {
		return ContentResult{}, apperr.NotFound("Content not found!")
	}

	enrollment, err := RequirePaidEnrollment(db, userID, path.ModuleID)
	if err != nil {
		return ContentResult{}, err
	}
	trees, err := LoadModuleTrees(db, path.ModuleID)
	if err != nil {
		return ContentResult{}, err
	}
	tree, ok := treeFor(trees, path.LevelID)
	if !ok {
		return ContentResult{}, apperr.NotFound("Content not found!")
	}

	key := progress.Key(contentID)
	var entry progress.ContentEntry
	snap, pct, err := mutateProgress(db, enrollment.ID, trees, func(s *progress.Snapshot) error {
		if completed {
			state, found := progress.StateOf(tree, path.SubTopicID, *s)
			if !found {
				return apperr.NotFound("Sub-topic not found!")
			}
			if state == progress.Locked {
				return apperr.Forbidden("Complete the previous sub-topic first!")
			}
		} else {
			s.RemoveSubTopic(progress.Key(path.SubTopicID))
		}
		entry = s.MarkContent(key, completed, now)
		return nil
	})
	if err != nil {
		return ContentResult{}, err
	}

	state, _ := progress.StateOf(tree, path.SubTopicID, snap)
	return ContentResult{
		Entry: progress.Entry{
			ContentID:   key,
			Completed:   entry.Completed,
			CompletedAt: entry.CompletedAt,
		},
		SubTopicID:         path.SubTopicID,
		SubTopicState:      state,
		ProgressPercentage: pct,
	}, nil
}

// SubTopicResult is returned after a sub-topic completion is recorded.
type SubTopicResult struct {
	Success            bool           `json:"success"`
	Completed          bool           `json:"completed"`
	SubTopicID         uint           `json:"subTopicId"`
	State              progress.State `json:"state"`
	ProgressPercentage int            `json:"progressPercentage"`
}

// MarkSubTopic acknowledges (or withdraws) completion of a sub-topic. The
// acknowledgement is only accepted once every required published item is
// done, so it can never disagree with content progress.
func MarkSubTopic(db *gorm.DB, userID, subTopicID uint, completed bool) (SubTopicResult, error) {
	path, err := findSubTopicPath(db, subTopicID)
	if err != nil {
		return SubTopicResult{}, err
	}
	if !path.IsActive {
		return SubTopicResult{}, apperr.NotFound("Sub-topic not found!")
	}

	enrollment, err := RequirePaidEnrollment(db, userID, path.ModuleID)
	if err != nil {
		return SubTopicResult{}, err
	}
	trees, err := LoadModuleTrees(db, path.ModuleID)
	if err != nil {
		return SubTopicResult{}, err
	}
	tree, ok := treeFor(trees, path.LevelID)
	if !ok {
		return SubTopicResult{}, apperr.NotFound("Sub-topic not found!")
	}

	var node progress.SubTopicNode
	for _, n := range tree.SubTopics {
		if n.ID == subTopicID {
			node = n
		}
	}

	key := progress.Key(subTopicID)
	snap, pct, err := mutateProgress(db, enrollment.ID, trees, func(s *progress.Snapshot) error {
		if !completed {
			s.RemoveSubTopic(key)
			return nil
		}
		state, _ := progress.StateOf(tree, subTopicID, *s)
		if state == progress.Locked {
			return apperr.Forbidden("Complete the previous sub-topic first!")
		}
		if !progress.SubTopicComplete(node, *s) {
			return apperr.BadRequest("All required content must be completed first!")
		}
		s.AddSubTopic(key)
		return nil
	})
	if err != nil {
		return SubTopicResult{}, err
	}

	state, _ := progress.StateOf(tree, subTopicID, snap)
	return SubTopicResult{
		Success:            true,
		Completed:          snap.HasSubTopic(key),
		SubTopicID:         subTopicID,
		State:              state,
		ProgressPercentage: pct,
	}, nil
}

// ModuleView is the full progress picture of one enrollment.
type ModuleView struct {
	ModuleID     uint                 `json:"moduleId"`
	EnrollmentID uint                 `json:"enrollmentId"`
	Progress     int                  `json:"progress"`
	Completed    bool                 `json:"completed"`
	Levels       []progress.LevelView `json:"levels"`
}

func BuildModuleView(enrollment models.Enrollment, trees []progress.LevelTree) ModuleView {
	snap := Snapshot(enrollment)
	view := ModuleView{
		ModuleID:     enrollment.ModuleID,
		EnrollmentID: enrollment.ID,
		Progress:     progress.ModuleProgress(trees, snap),
		Levels:       make([]progress.LevelView, 0, len(trees)),
	}
	completed := len(trees) > 0
	for _, t := range trees {
		lv := progress.Evaluate(t, snap)
		completed = completed && lv.Completed
		view.Levels = append(view.Levels, lv)
	}
	view.Completed = completed
	return view
}

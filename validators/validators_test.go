package validators

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" validate:"notblank"`
	Email string   `json:"email" validate:"required,email"`
	Tags  []string `json:"tags" validate:"omitempty,len=2,dive,notblank"`
}

func TestStructReportsJSONNames(t *testing.T) {
	errs := Struct(&sample{Name: "  ", Email: "nope", Tags: []string{"a", " "}})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "tags[1]")
	assert.Equal(t, "name cannot be blank", errs["name"])

	assert.Nil(t, Struct(&sample{Name: "ok", Email: "a@b.co"}))
}

func TestBodyHandler(t *testing.T) {
	app := fiber.New()
	app.Post("/", Body[sample]("validatedSample"), func(c *fiber.Ctx) error {
		s := c.Locals("validatedSample").(*sample)
		return c.SendString(s.Name)
	})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","email":"x@y.io"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "x", string(body))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)
}

func TestParamIDAndPagination(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", ParamID("id"), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/12", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/0", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	page, limit, offset := (&Pagination{Page: 3, Limit: 10}).Normalize()
	assert.Equal(t, []int{3, 10, 20}, []int{page, limit, offset})
	page, limit, offset = (&Pagination{}).Normalize()
	assert.Equal(t, []int{1, 20, 0}, []int{page, limit, offset})
}

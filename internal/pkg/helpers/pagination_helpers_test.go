package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_ThirteenItems(t *testing.T) {
	items := seq(13)

	first := Paginate(items, 1, 10)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)
	assert.Equal(t, 2, first.NextNumber)

	second := Paginate(items, 2, 10)
	assert.Equal(t, []int{11, 12, 13}, second.Items)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrevious)
	assert.Equal(t, 1, second.PreviousNumber)
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	items := seq(25)

	low := Paginate(items, -4, 10)
	assert.Equal(t, 1, low.Number)
	assert.Equal(t, 1, low.Items[0])

	high := Paginate(items, 99, 10)
	assert.Equal(t, 3, high.Number)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, high.Items)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]string{}, 3, 10)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasOtherPages())
}

func TestPaginate_ExactMultiple(t *testing.T) {
	p := Paginate(seq(20), 2, 10)
	assert.Equal(t, 2, p.TotalPages)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, []int{1, 2}, p.PageRange())
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]int{
		"/":             1,
		"/?page=3":      3,
		"/?page=abc":    1,
		"/?page=":       1,
		"/?page=-2":     -2,
		"/?page=2&x=10": 2,
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", target, nil)
		assert.Equal(t, want, ParsePage(c), target)
	}
}

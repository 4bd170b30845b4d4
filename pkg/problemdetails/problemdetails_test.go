package problemdetails

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New(http.StatusNotFound, TypeNotFound, "Not Found", "Short URL not found")

	assert.Equal(t, "https://linktrack.dev/problems/not-found", p.Type)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "Not Found", p.Title)
	assert.Equal(t, "Short URL not found", p.Detail)
}

package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushHijacker struct {
	http.ResponseWriter
	flushed, hijacked bool
}

func (f *flushHijacker) Flush() { f.flushed = true }

func (f *flushHijacker) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	f.hijacked = true
	return nil, nil, nil
}

// bareWriter supports neither Flush nor Hijack.
type bareWriter struct{ h http.Header }

func (b *bareWriter) Header() http.Header {
	if b.h == nil {
		b.h = make(http.Header)
	}
	return b.h
}
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int)             {}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())

	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	n, err := rec.Write([]byte(`{"data":{"id":321}}`))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.status)
	assert.Equal(t, n, rec.bytes)
}

func TestStatusRecorder_WriteWithoutHeaderIsOK(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	_, _ = rec.Write([]byte("ok"))
	rec.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, rec.status)
}

func TestStatusRecorder_Delegates(t *testing.T) {
	under := &flushHijacker{ResponseWriter: httptest.NewRecorder()}
	rec := newStatusRecorder(under)

	rec.Flush()
	_, _, err := rec.Hijack()

	assert.NoError(t, err)
	assert.True(t, under.flushed)
	assert.True(t, under.hijacked)
	assert.Same(t, under, rec.Unwrap())
}

func TestStatusRecorder_UnsupportedWriter(t *testing.T) {
	rec := newStatusRecorder(&bareWriter{})

	assert.NotPanics(t, rec.Flush)
	_, _, err := rec.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

func TestWriteError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	assert.NoError(t, writeError(w, http.StatusForbidden, "FORBIDDEN", "access restricted"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"FORBIDDEN","message":"access restricted"}}`, w.Body.String())
}

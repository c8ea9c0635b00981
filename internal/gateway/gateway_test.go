package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rail44/roster/internal/mockapi"
	"github.com/rail44/roster/internal/row"
)

// recorder wraps a handler and keeps every request line it saw.
type recorder struct {
	mu       sync.Mutex
	next     http.Handler
	requests []string
	headers  []http.Header
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.requests = append(r.requests, req.Method+" "+req.URL.Path)
	r.headers = append(r.headers, req.Header.Clone())
	r.mu.Unlock()
	r.next.ServeHTTP(w, req)
}

func newMock(t *testing.T) (*Client, *recorder, *Events) {
	t.Helper()
	rec := &recorder{next: mockapi.NewRouter(mockapi.NewStore(mockapi.DefaultUsers()), mockapi.Options{})}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	events := NewEvents(8)
	c, err := New(srv.URL+"/", WithHTTPClient(srv.Client()), WithReporter(events))
	require.NoError(t, err)
	return c, rec, events
}

func idOf(t *testing.T, r row.Row) string {
	t.Helper()
	id, ok := r.ID()
	require.True(t, ok)
	return id
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "jsonplaceholder.typicode.com", "ftp://host", "http://"} {
		_, err := New(endpoint)
		assert.Error(t, err, endpoint)
	}
}

func TestList(t *testing.T) {
	c, rec, events := newMock(t)

	rows, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for i, r := range rows {
		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}[i], idOf(t, r))
	}
	assert.Equal(t, []string{"GET /users"}, rec.requests)
	assert.NotEmpty(t, rec.headers[0].Get("X-Request-ID"))
	assert.Empty(t, events.C())
}

func TestGet(t *testing.T) {
	c, rec, _ := newMock(t)

	r, err := c.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Leanne Graham", r["name"])
	assert.Equal(t, []string{"GET /users/1"}, rec.requests)
}

func TestCreateSendsFullRow(t *testing.T) {
	c, rec, _ := newMock(t)

	echo, err := c.Create(context.Background(), DefaultNewUser())
	require.NoError(t, err)
	assert.Equal(t, "11", idOf(t, echo))
	assert.Equal(t, "Clementina DuBuque", echo["name"])
	v, _ := echo.Get("address.geo.lat")
	assert.Equal(t, "-38.2386", v)

	assert.Equal(t, []string{"POST /users"}, rec.requests)
	assert.Equal(t, "application/json; charset=UTF-8", rec.headers[0].Get("Content-Type"))
}

func TestUpdateFieldsSendsPartialRow(t *testing.T) {
	c, rec, _ := newMock(t)

	echo, err := c.UpdateFields(context.Background(), "1", row.Row{"name": "Pepito"})
	require.NoError(t, err)
	assert.Equal(t, "Pepito", echo["name"])
	assert.Equal(t, []string{"PATCH /users/1"}, rec.requests)
}

func TestDeleteIssuesOneRequest(t *testing.T) {
	c, rec, _ := newMock(t)

	require.NoError(t, c.Delete(context.Background(), "2"))
	assert.Equal(t, []string{"DELETE /users/2"}, rec.requests)
}

func TestHTTPFailureIsReportedOnce(t *testing.T) {
	c, _, events := newMock(t)

	_, err := c.Get(context.Background(), "404")
	require.Error(t, err)

	var rf *RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, OpGet, rf.Op)
	assert.Equal(t, "404", rf.ID)
	assert.Equal(t, http.StatusNotFound, rf.Status)
	assert.Equal(t, "get user 404 failed: 404 Not Found", rf.Error())

	require.Len(t, events.C(), 1)
	assert.Same(t, rf, <-events.C())
}

func TestTransportFailureIsReportedOnce(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	events := NewEvents(4)
	c, err := New(srv.URL, WithReporter(events))
	require.NoError(t, err)

	rows, err := c.List(context.Background())
	assert.Nil(t, rows)
	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, 0, rf.Status)
	assert.Equal(t, OpList, rf.Op)
	assert.Len(t, events.C(), 1)
}

func TestMalformedBodyIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	t.Cleanup(srv.Close)

	events := NewEvents(4)
	c, err := New(srv.URL, WithReporter(events))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, OpList, rf.Op)
	assert.Len(t, events.C(), 1)
}

func TestCanceledRequestIsNotReported(t *testing.T) {
	c, _, events := newMock(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, events.C())
}

func TestEventsDropWhenFull(t *testing.T) {
	events := NewEvents(1)
	events.Report(&RequestFailed{Op: OpList})
	events.Report(&RequestFailed{Op: OpGet})

	require.Len(t, events.C(), 1)
	assert.Equal(t, OpList, (<-events.C()).Op)
}

func TestCustomResource(t *testing.T) {
	rec := &recorder{next: mockapi.NewRouter(mockapi.NewStore(mockapi.DefaultUsers()), mockapi.Options{Resource: "people"})}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithResource("/people/"))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /people/3"}, rec.requests)
}

func TestGetManyKeepsOrder(t *testing.T) {
	c, rec, _ := newMock(t)

	rows, err := c.GetMany(context.Background(), []string{"3", "1", "2"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "3", idOf(t, rows[0]))
	assert.Equal(t, "1", idOf(t, rows[1]))
	assert.Equal(t, "2", idOf(t, rows[2]))
	assert.Len(t, rec.requests, 3)
}

func TestGetManyFailsOnMissing(t *testing.T) {
	c, _, _ := newMock(t)

	_, err := c.GetMany(context.Background(), []string{"1", "404"})
	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "404", rf.ID)
}

package expense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/dongsplit/pkg/middleware"
	"github.com/fkhayef/dongsplit/pkg/response"
)

func serve(t *testing.T, f *fixture, method, target, body string) (*httptest.ResponseRecorder, response.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	w := httptest.NewRecorder()
	NewHandler(f.svc).Routes().ServeHTTP(w, req)

	var resp response.APIResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandler_Create(t *testing.T) {
	f := newFixture(t)
	f.expectPersist(100, 2, 1)

	body := `{"title":"Pizza","category_id":5,"pong":100,"currency":"EUR",
		"debtors":[{"relation_id":2,"amount":60},{"relation_id":3,"amount":40}],
		"payers":[{"relation_id":1,"amount":100}]}`
	w, resp := serve(t, f, http.MethodPost, "/", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}

func TestHandler_Create_ValidationFails(t *testing.T) {
	f := newFixture(t)

	w, resp := serve(t, f, http.MethodPost, "/", `{"title":"Pizza","category_id":5,"pong":100,"currency":"EURO"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "Currency")
}

func TestHandler_Create_ForeignRelation(t *testing.T) {
	f := newFixture(t)

	body := `{"title":"Pizza","category_id":5,"pong":100,"currency":"EUR",
		"debtors":[{"relation_id":4,"amount":100}],
		"payers":[{"relation_id":1,"amount":100}]}`
	w, resp := serve(t, f, http.MethodPost, "/", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_RELATION", resp.Error.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("SELECT (.+) FROM dongs").WillReturnRows(sqlmock.NewRows(dongCols))

	w, _ := serve(t, f, http.MethodGet, "/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Delete(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE dongs SET is_deleted = TRUE WHERE id").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("UPDATE dongs SET is_deleted = TRUE WHERE origin_dong_id").WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectCommit()

	w, _ := serve(t, f, http.MethodDelete, "/100", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

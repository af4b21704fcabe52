// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{"not found", NotFound(errors.New("missing")), http.StatusNotFound, "missing\n"},
		{"forbidden", Forbidden(errors.New("no")), http.StatusForbidden, "no\n"},
		{"custom", HTTPError(errors.New("teapot"), http.StatusTeapot), http.StatusTeapot, "teapot\n"},
		{"nil cause", &httpError{status: http.StatusNoContent}, http.StatusNoContent, ""},
		{"revert", reverts.ErrNotStaked, http.StatusBadRequest, "tokens are not staked\n"},
		{"wrapped revert", pkgerrors.WithMessage(reverts.ErrIsStaked, "stake"), http.StatusBadRequest, "stake: tokens are already staked\n"},
		{"internal", errors.New("disk"), http.StatusInternalServerError, "disk\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Amount uint64 `json:"amount"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"amount":12}`), &v))
	assert.Equal(t, uint64(12), v.Amount)

	assert.Error(t, ParseJSON(strings.NewReader(`{"amount":12,"extra":1}`), &v))
	assert.Error(t, ParseJSON(strings.NewReader(`{"amount":-1}`), &v))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, M{"a": 1}))
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"a\":1}\n", rec.Body.String())
}

func TestParseAddressVar(t *testing.T) {
	addr, err := ParseAddressVar(map[string]string{"owner": "0x0000000000000000000000000000000000000001"}, "owner")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", addr.String())

	_, err = ParseAddressVar(map[string]string{"owner": "0x01"}, "owner")
	var he *httpError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.status)
}

func TestParseUint64Query(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x", nil)

	v, err := ParseUint64Query(req, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	v, err = ParseUint64Query(req, "offset", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	_, err = ParseUint64Query(req, "bad", 0)
	assert.Error(t, err)
}

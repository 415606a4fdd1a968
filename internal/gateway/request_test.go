package gateway_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/gateway"
)

func TestResponseErrCode(t *testing.T) {
	cases := []struct {
		body string
		code int64
		ok   bool
	}{
		{`{"errCode":0}`, 0, true},
		{`{"errCode":1001}`, 1001, true},
		{`{"errCode":"1069"}`, 1069, true},
		{`{"errCode":" 0 "}`, 0, true},
		{`{"errCode":1.5}`, 0, false},
		{`{"errCode":"abc"}`, 0, false},
		{`{"errCode":null}`, 0, false},
		{`{}`, 0, false},
	}
	for _, c := range cases {
		var resp gateway.Response
		dec := json.NewDecoder(strings.NewReader(c.body))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&resp))
		code, ok := resp.ErrCode()
		require.Equal(t, c.ok, ok, c.body)
		require.Equal(t, c.code, code, c.body)
	}

	code, ok := gateway.Response{"errCode": float64(7)}.ErrCode()
	require.True(t, ok)
	require.EqualValues(t, 7, code)
}

func TestFutureResolvesOnce(t *testing.T) {
	f := gateway.Resolved(gateway.Request{"a": 1}, gateway.Response{"errCode": 0}, nil)
	o, ok := f.Outcome()
	require.True(t, ok)
	require.NoError(t, o.Err)
	require.Equal(t, 1, o.Request["a"])

	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must be done")
	}
}

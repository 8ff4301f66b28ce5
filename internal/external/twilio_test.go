package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-devoe/riverWatch/internal/types"
)

func newTwilioForTest(t *testing.T, handler http.HandlerFunc) *TwilioClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := NewBaseClient(srv.Client(), "twilio-test", RetryPolicy{
		MaxRetries: 1,
		MinWait:    time.Millisecond,
		MaxWait:    time.Millisecond,
	}, "riverwatch-test", WithSleepFunc(func(time.Duration) {}))

	return NewTwilioClient(base, TwilioClientConfig{
		AccountSID: "AC123",
		AuthToken:  types.SecretString("secret-token"),
		FromNumber: "+12065550100",
		BaseURL:    srv.URL,
	})
}

func TestTwilioSendSMS(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	client := newTwilioForTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
	})

	err := client.SendSMS(context.Background(), "+14255550199", "river is rising")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret-token", gotPass)
	assert.Equal(t, "+14255550199", gotTo)
	assert.Equal(t, "+12065550100", gotFrom)
	assert.Equal(t, "river is rising", gotBody)
}

func TestTwilioSendSMS_Rejected(t *testing.T) {
	client := newTwilioForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": 21211, "message": "Invalid 'To' Phone Number"}`))
	})

	err := client.SendSMS(context.Background(), "not-a-number", "hello")
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamSMS, appErr.Code)
	assert.Contains(t, appErr.Message, "21211")
}

func TestTwilioSendSMS_UpstreamDown(t *testing.T) {
	client := newTwilioForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.SendSMS(context.Background(), "+14255550199", "hello")
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamSMS, appErr.Code)
}

package models

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPolicy_UnmarshalForms(t *testing.T) {
	t.Run("plain presigned url", func(t *testing.T) {
		var it Item
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"file","policy":"https://s3.local/b/k?X-Amz-Signature=x"}`), &it))
		require.NotNil(t, it.Policy)
		assert.Equal(t, "https://s3.local/b/k?X-Amz-Signature=x", it.Policy.URL)
		assert.Empty(t, it.Policy.Fields)
	})

	t.Run("url with signing fields", func(t *testing.T) {
		var it Item
		require.NoError(t, json.Unmarshal([]byte(`{
			"id":"a","type":"file",
			"policy":{"url":"https://s3.local/b/k","fields":{"AWSAccessKeyId":"AK","acl":"private","key":"k","policy":"p","signature":"s"}}
		}`), &it))
		require.NotNil(t, it.Policy)
		assert.Equal(t, "AK", it.Policy.Fields["AWSAccessKeyId"])
	})

	t.Run("absent", func(t *testing.T) {
		var it Item
		require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"file"}`), &it))
		assert.Nil(t, it.Policy)
	})

	t.Run("wrong shape", func(t *testing.T) {
		var it Item
		require.Error(t, json.Unmarshal([]byte(`{"id":"a","policy":42}`), &it))
	})
}

func TestUploadPolicy_TargetURL(t *testing.T) {
	p := &UploadPolicy{URL: "https://s3.local/b/k?x=1", Fields: map[string]string{"signature": "s", "key": "k"}}
	got, err := p.TargetURL()
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("x"))
	assert.Equal(t, "s", u.Query().Get("signature"))
	assert.Equal(t, "k", u.Query().Get("key"))

	var empty *UploadPolicy
	_, err = empty.TargetURL()
	require.Error(t, err)
}

func TestSDKRelayEvent_Empty(t *testing.T) {
	var nilEvent *SDKRelayEvent
	assert.True(t, nilEvent.Empty())
	assert.True(t, (&SDKRelayEvent{}).Empty())
	assert.False(t, (&SDKRelayEvent{Type: EventItemsSelected}).Empty())
}

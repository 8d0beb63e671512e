package metalsdev_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	metalsdev "silverspot/internal/provider/metalsdev"
)

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	// Arrange: a keyed client returning valid prices
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(t, http.StatusOK, latestBody("31.5", "2750")), nil).
		Times(1)

	client, err := metalsdev.NewAPIClient("test-key", metalsdev.WithHTTPClient(httpClient))
	require.NoError(t, err)
	p := metalsdev.New(metalsdev.Config{}, client)

	// Act: fetch a pair
	require.True(t, p.Configured())
	pair, err := p.Fetch(t.Context())

	// Assert: the pair is labelled with the provider name
	require.NoError(t, err)
	require.Equal(t, "metals.dev", p.Name())
	require.Equal(t, "metals.dev", pair.Source)
	require.Equal(t, 31.5, pair.Silver)
	require.Equal(t, 2750.0, pair.Gold)
	require.False(t, pair.FetchedAt.IsZero())
}

func TestProvider_NotConfiguredWithoutKey(t *testing.T) {
	t.Parallel()

	// Arrange: a client without a key must never reach the network
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	client, err := metalsdev.NewAPIClient("", metalsdev.WithHTTPClient(httpClient))
	require.NoError(t, err)
	p := metalsdev.New(metalsdev.Config{Name: "premium"}, client)

	// Assert: reported as unconfigured and Fetch refuses
	require.False(t, p.Configured())
	_, err = p.Fetch(t.Context())
	require.ErrorIs(t, err, metalsdev.ErrNoKey)
}

package s3

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))

	assert.Equal(t, "reports/hr_admin/20240506T060809Z-id1.xlsx", reportKey("hr_admin", at, "id1"))
	assert.Equal(t, "reports/jane_doe/20240506T060809Z-id2.xlsx", reportKey("jane doe/", at, "id2"))
	assert.Equal(t, "reports/anonymous/20240506T060809Z-id3.xlsx", reportKey("  ", at, "id3"))
}

func TestParseEndpoint(t *testing.T) {
	assert.Equal(t, "minio:9000", parseEndpoint("http://minio:9000"))
	assert.Equal(t, "minio:9000", parseEndpoint("minio:9000"))
}

func TestNewReportArchiveValidates(t *testing.T) {
	_, err := NewReportArchive(Options{Bucket: "reports"})
	require.Error(t, err)

	_, err = NewReportArchive(Options{Endpoint: "localhost:9000"})
	require.Error(t, err)

	archive, err := NewReportArchive(Options{
		Endpoint: "http://localhost:9000", Bucket: "reports", PublicBaseURL: "http://cdn.local/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local", archive.publicBaseURL)
	assert.Equal(t, defaultLinkTTL, archive.linkTTL)
}

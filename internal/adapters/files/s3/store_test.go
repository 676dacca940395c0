package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/files"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport responde 200 a todo y guarda los PUT recibidos.
type recordingTransport struct {
	mu   sync.Mutex
	puts map[string][]byte
	ct   map[string]string
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPut {
		body, _ := io.ReadAll(req.Body)
		t.mu.Lock()
		t.puts[req.URL.Path] = body
		t.ct[req.URL.Path] = req.Header.Get("Content-Type")
		t.mu.Unlock()
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Etag": []string{`"etag"`}},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func TestStore_PutUploadsUnderKindPrefix(t *testing.T) {
	rt := &recordingTransport{puts: map[string][]byte{}, ct: map[string]string{}}

	store, err := New(context.Background(),
		Config{Bucket: "shelter", Region: "us-east-1", Endpoint: "https://s3.mock.local", PathStyle: true},
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
		config.WithHTTPClient(&http.Client{Transport: rt}),
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	)
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), files.KindAbusePhoto, "Evidence.JPG", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "abuse_photo/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), ref)

	path := "/shelter/" + ref
	require.Contains(t, rt.puts, path)
	assert.Contains(t, string(rt.puts[path]), "jpeg-bytes")
	assert.Equal(t, "image/jpeg", rt.ct[path])
}

type failingPut struct{}

func (failingPut) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestStore_PutFailureIsDependencyError(t *testing.T) {
	store := newWithClient(failingPut{}, "shelter")

	_, err := store.Put(context.Background(), files.KindAnimal, "a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, apperr.ErrDependency)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

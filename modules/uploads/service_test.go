package uploads

import (
	"context"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magbay/LAN-Chat/domain/chat"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)          {}
func (m *mockLogger) Info(msg string, args ...any)           {}
func (m *mockLogger) Warn(msg string, args ...any)           {}
func (m *mockLogger) Error(msg string, args ...any)          {}
func (m *mockLogger) With(args ...any) types.Logger          { return m }
func (m *mockLogger) WithError(err error) types.Logger       { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// createTestModule starts a mono app with an in-memory images bucket.
func createTestModule(t *testing.T) *Module {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithJetStreamStorageDir(t.TempDir()),
	)
	require.NoError(t, err)

	plugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        BucketName,
				Description: "Test bucket",
				MaxBytes:    10 * 1024 * 1024,
				Storage:     fsjetstream.MemoryStorage,
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, app.RegisterPlugin(plugin, "storage"))
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	module := NewModule(&mockLogger{})
	module.SetPlugin("storage", plugin)
	require.NoError(t, module.Start(context.Background()))
	return module
}

func TestService_SaveAndOpenImage(t *testing.T) {
	module := createTestModule(t)
	ctx := context.Background()
	data := []byte("\x89PNG fake image bytes")

	stored, err := module.SaveImage(ctx, "my cat.PNG", data)
	require.NoError(t, err)

	assert.Equal(t, "my_cat.png", stored.Name)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.Equal(t, int64(len(data)), stored.Size)
	assert.Equal(t, "/uploads/"+stored.ID+"/my_cat.png", stored.URL)
	_, err = uuid.Parse(stored.ID)
	assert.NoError(t, err)

	spans := chat.Classify("look " + stored.URL)
	require.Len(t, spans, 2)
	assert.Equal(t, chat.SpanImageRef, spans[1].Kind)

	got, info, err := module.OpenImage(ctx, stored.ID, stored.Name)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, stored.URL, info.URL)
}

func TestService_SameNameNeverOverwrites(t *testing.T) {
	module := createTestModule(t)
	ctx := context.Background()

	first, err := module.SaveImage(ctx, "pic.gif", []byte("one"))
	require.NoError(t, err)
	second, err := module.SaveImage(ctx, "pic.gif", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first.URL, second.URL)

	got, _, err := module.OpenImage(ctx, first.ID, first.Name)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)
}

func TestService_SaveImageRejectsInvalidNames(t *testing.T) {
	module := createTestModule(t)

	_, err := module.SaveImage(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, ErrNoSelectedFile)

	_, err = module.SaveImage(context.Background(), "notes.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestService_OpenImageErrors(t *testing.T) {
	module := createTestModule(t)
	ctx := context.Background()

	_, _, err := module.OpenImage(ctx, "not-a-uuid", "a.png")
	assert.ErrorIs(t, err, ErrInvalidImageID)

	_, _, err = module.OpenImage(ctx, uuid.New().String(), "a.png")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := module.SaveImage(ctx, "a.png", []byte("x"))
	require.NoError(t, err)
	_, _, err = module.OpenImage(ctx, stored.ID, "b.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModule_NotStarted(t *testing.T) {
	module := NewModule(&mockLogger{})

	assert.Error(t, module.Start(context.Background()))
	assert.False(t, module.Health(context.Background()).Healthy)

	_, err := module.SaveImage(context.Background(), "a.png", nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

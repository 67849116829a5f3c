package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"sync"
	"testing"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ []byte) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeIndex struct {
	hits  []domain.IndexHit
	err   error
	calls int
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, _ uint64) ([]domain.IndexHit, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeIndex) Count(_ context.Context) (uint64, error) {
	return uint64(len(f.hits)), nil
}

type fakeCatalog struct {
	artworks []domain.Artwork
}

func (f *fakeCatalog) Artwork(row uint64) (*domain.Artwork, bool) {
	if row >= uint64(len(f.artworks)) {
		return nil, false
	}
	return &f.artworks[row], true
}

func (f *fakeCatalog) Size() int {
	return len(f.artworks)
}

type fakeDescriber struct {
	res   *DescribeRes
	calls int
}

func (f *fakeDescriber) Describe(_ context.Context, _ *DescribeReq) *DescribeRes {
	f.calls++
	return f.res
}

type fakeCache struct {
	mu    sync.Mutex
	texts map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{texts: make(map[string]string)}
}

func (f *fakeCache) GetDescription(_ context.Context, req *DescribeReq) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.texts[req.Artist+"/"+req.Title]
	return text, ok
}

func (f *fakeCache) SetDescription(_ context.Context, req *DescribeReq, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[req.Artist+"/"+req.Title] = text
	return nil
}

type fakeTelemetry struct {
	mu      sync.Mutex
	records []*domain.TelemetryRecord
	err     error
}

func (f *fakeTelemetry) Append(record *domain.TelemetryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeTelemetry) last(t *testing.T) *domain.TelemetryRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.records)
	return f.records[len(f.records)-1]
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{artworks: []domain.Artwork{
		*domain.NewArtwork("Vincent van Gogh", "The Starry Night", "Post-Impressionism", "images/starry_night.jpg"),
		*domain.NewArtwork("Claude Monet", "Impression, Sunrise", "Impressionism", "images/sunrise.jpg"),
		*domain.NewArtwork("Edvard Munch", "The Scream", "Expressionism", "images/scream.jpg"),
		*domain.NewArtwork("Edgar Degas", "The Dance Class", "Impressionism", "images/dance_class.jpg"),
	}}
}

type ucFixture struct {
	embedder  *fakeEmbedder
	index     *fakeIndex
	catalog   CatalogRepository
	describer *fakeDescriber
	cache     *fakeCache
	telemetry *fakeTelemetry
}

func newFixture() *ucFixture {
	return &ucFixture{
		embedder:  &fakeEmbedder{vector: []float32{1, 0, 0}},
		index:     &fakeIndex{hits: []domain.IndexHit{{Row: 0, Distance: 0.15}}},
		catalog:   testCatalog(),
		describer: &fakeDescriber{res: NewDescribeRes("A landmark of Post-Impressionism.", false)},
		cache:     newFakeCache(),
		telemetry: &fakeTelemetry{},
	}
}

func (f *ucFixture) build() *RecognitionUseCase {
	return NewRecognitionUC(
		f.embedder, f.index, f.catalog, f.describer, f.cache, f.telemetry,
		nil, nil, nopLogger{}, 5,
	)
}

func TestRecognizeSuccess(t *testing.T) {
	f := newFixture()
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	// Расстояние приходит из индекса как float32
	wantConfidence := math.Exp(-float64(float32(0.15)))

	require.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, "Vincent van Gogh", res.Artist)
	assert.Equal(t, "The Starry Night", res.Title)
	assert.Equal(t, "Post-Impressionism", res.Period)
	assert.InDelta(t, wantConfidence, res.Confidence, 1e-9)
	assert.Equal(t, "A landmark of Post-Impressionism.", res.Description)
	assert.Equal(t, domain.DescriptionFallback, res.DescriptionSource)
	assert.Empty(t, res.Message)

	record := f.telemetry.last(t)
	assert.Equal(t, "Vincent van Gogh", record.Artist)
	assert.InDelta(t, wantConfidence, record.Confidence, 1e-9)
}

func TestRecognizeEmptyCatalog(t *testing.T) {
	f := newFixture()
	f.catalog = &fakeCatalog{}
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusUnavailable, res.Status)
	assert.Equal(t, "Unknown", res.Artist)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, "No index loaded", res.Message)

	// При недоступном каталоге пайплайн не трогает внешние сервисы
	assert.Equal(t, 0, f.embedder.calls)
	assert.Equal(t, 0, f.index.calls)
	assert.Equal(t, 0, f.describer.calls)

	record := f.telemetry.last(t)
	assert.Equal(t, "Unknown", record.Artist)
	assert.Equal(t, 0.0, record.Confidence)
}

func TestRecognizeNilCatalog(t *testing.T) {
	f := newFixture()
	f.catalog = nil
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusUnavailable, res.Status)
	assert.Equal(t, 0, f.embedder.calls)
}

func TestRecognizeUndecodableImage(t *testing.T) {
	f := newFixture()
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq([]byte("definitely not an image"), "image/jpeg", false))

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, "Unknown", res.Artist)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, 0, f.embedder.calls)
}

func TestRecognizeEmbeddingFailure(t *testing.T) {
	f := newFixture()
	f.embedder.err = errors.New("clip service down")
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, 0, f.index.calls)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestRecognizeSearchFailure(t *testing.T) {
	f := newFixture()
	f.index.err = errors.New("qdrant unreachable")
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, 0, f.describer.calls)
}

func TestRecognizeConfidenceMonotonic(t *testing.T) {
	near := newFixture()
	near.index.hits = []domain.IndexHit{{Row: 0, Distance: 0.1}}
	resNear := near.build().Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	far := newFixture()
	far.index.hits = []domain.IndexHit{{Row: 0, Distance: 0.9}}
	resFar := far.build().Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Greater(t, resNear.Confidence, resFar.Confidence)
	assert.LessOrEqual(t, resFar.Confidence, 1.0)
	assert.Positive(t, resFar.Confidence)
}

func TestRecognizeShowContext(t *testing.T) {
	hits := []domain.IndexHit{
		{Row: 0, Distance: 0.15},
		{Row: 1, Distance: 0.32},
		{Row: 2, Distance: 0.41},
		{Row: 3, Distance: 0.55},
	}

	plain := newFixture()
	plain.index.hits = hits
	resPlain := plain.build().Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	withCtx := newFixture()
	withCtx.index.hits = hits
	resCtx := withCtx.build().Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", true))

	// Контекст меняет только описание
	assert.Equal(t, resPlain.Artist, resCtx.Artist)
	assert.Equal(t, resPlain.Title, resCtx.Title)
	assert.Equal(t, resPlain.Confidence, resCtx.Confidence)

	assert.NotContains(t, resPlain.Description, "Similar artworks:")
	assert.Contains(t, resCtx.Description, "Similar artworks:")
	assert.Contains(t, resCtx.Description, "Claude Monet - Impression, Sunrise")
	assert.Contains(t, resCtx.Description, "Edvard Munch - The Scream")
	assert.Contains(t, resCtx.Description, "Edgar Degas - The Dance Class")
}

func TestRecognizeCachedDescription(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.cache.SetDescription(
		context.Background(),
		NewDescribeReq("Vincent van Gogh", "The Starry Night", "Post-Impressionism"),
		"Cached description text.",
	))
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	require.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, "Cached description text.", res.Description)
	assert.Equal(t, domain.DescriptionGenerated, res.DescriptionSource)
	assert.Equal(t, 0, f.describer.calls)
}

func TestRecognizeTelemetryFailureDoesNotBreakResult(t *testing.T) {
	f := newFixture()
	f.telemetry.err = errors.New("disk full")
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, "Vincent van Gogh", res.Artist)
}

func TestRecognizeRowOutsideCatalog(t *testing.T) {
	f := newFixture()
	f.index.hits = []domain.IndexHit{{Row: 99, Distance: 0.2}}
	uc := f.build()

	res := uc.Recognize(context.Background(), NewRecognizeReq(testJPEG(t), "image/jpeg", false))

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, "Unknown", res.Artist)
}

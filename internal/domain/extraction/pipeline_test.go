package extraction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePager struct {
	text      string
	pages     int
	renderErr error
}

func (p *fakePager) PageCount() int { return p.pages }

func (p *fakePager) ExtractText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return p.text, nil
}

func (p *fakePager) RasterizePages(ctx context.Context, scale float64, fn func(img image.Image, pageIndex, totalPages int) error) error {
	for i := 0; i < p.pages; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if p.renderErr != nil {
			return &ExtractionError{Page: i, Err: p.renderErr}
		}
		if err := fn(image.NewGray(image.Rect(0, 0, 1, 1)), i, p.pages); err != nil {
			return err
		}
	}
	return nil
}

type fakeRecognizer struct {
	failPages map[int]bool
	seen      []int
}

func (r *fakeRecognizer) RecognizePage(ctx context.Context, _ image.Image, pageIndex int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.seen = append(r.seen, pageIndex)
	if r.failPages[pageIndex] {
		return "", errors.New("recognition glitch")
	}
	return fmt.Sprintf("page %d text", pageIndex+1), nil
}

func testController(p Pager, rec *fakeRecognizer, progress ProgressFunc) *Controller {
	c := NewController(Options{Recognizer: rec, Progress: progress}, slog.New(slog.DiscardHandler))
	c.open = func(_ []byte, _ *slog.Logger, fn func(Pager) error) error {
		return fn(p)
	}
	return c
}

func TestControllerProcess(t *testing.T) {
	t.Run("long direct text skips OCR", func(t *testing.T) {
		text := strings.Repeat("embedded statement text ", 10)
		rec := &fakeRecognizer{}
		c := testController(&fakePager{text: text, pages: 3}, rec, nil)

		got, err := c.Process(context.Background(), []byte("pdf"))
		require.NoError(t, err)
		assert.Equal(t, text, got)
		assert.Empty(t, rec.seen, "no page should reach the recognizer")
	})

	t.Run("short direct text falls back to OCR", func(t *testing.T) {
		rec := &fakeRecognizer{}
		c := testController(&fakePager{text: "stub", pages: 3}, rec, nil)

		got, err := c.Process(context.Background(), []byte("pdf"))
		require.NoError(t, err)
		assert.Equal(t, "page 1 text\n\npage 2 text\n\npage 3 text", got)
		assert.Equal(t, []int{0, 1, 2}, rec.seen)
	})

	t.Run("failed page is skipped, order preserved", func(t *testing.T) {
		rec := &fakeRecognizer{failPages: map[int]bool{2: true}}
		c := testController(&fakePager{text: "", pages: 5}, rec, nil)

		got, err := c.Process(context.Background(), []byte("pdf"))
		require.NoError(t, err)
		assert.Equal(t, "page 1 text\n\npage 2 text\n\npage 4 text\n\npage 5 text", got)
	})

	t.Run("cancellation before any page yields ErrCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := &fakeRecognizer{}
		c := testController(&fakePager{text: "stub", pages: 3}, rec, nil)

		_, err := c.Process(ctx, []byte("pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Empty(t, rec.seen)
	})

	t.Run("render failure aborts the whole pass", func(t *testing.T) {
		rec := &fakeRecognizer{}
		c := testController(&fakePager{text: "", pages: 3, renderErr: errors.New("corrupt page")}, rec, nil)

		_, err := c.Process(context.Background(), []byte("pdf"))
		require.Error(t, err)

		var ee *ExtractionError
		assert.ErrorAs(t, err, &ee)
		assert.False(t, IsCancelled(err))
	})

	t.Run("progress phases are reported in order", func(t *testing.T) {
		var phases []Phase
		var messages []string
		progress := func(phase Phase, message string) {
			phases = append(phases, phase)
			messages = append(messages, message)
		}

		rec := &fakeRecognizer{}
		c := testController(&fakePager{text: "stub", pages: 2}, rec, progress)

		_, err := c.Process(context.Background(), []byte("pdf"))
		require.NoError(t, err)

		assert.Equal(t, []Phase{PhaseLoading, PhaseExtracting, PhaseScanning, PhaseScanning}, phases)
		assert.Equal(t, "Scanning page 1/2", messages[2])
		assert.Equal(t, "Scanning page 2/2", messages[3])
	})

	t.Run("scanning progress covers pages that fail recognition", func(t *testing.T) {
		var messages []string
		progress := func(phase Phase, message string) {
			if phase == PhaseScanning {
				messages = append(messages, message)
			}
		}

		rec := &fakeRecognizer{failPages: map[int]bool{1: true}}
		c := testController(&fakePager{text: "stub", pages: 3}, rec, progress)

		_, err := c.Process(context.Background(), []byte("pdf"))
		require.NoError(t, err)

		assert.Equal(t, []string{"Scanning page 1/3", "Scanning page 2/3", "Scanning page 3/3"}, messages)
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"cancelled sentinel", ErrCancelled, KindCancelled},
		{"wrapped context cancel", fmt.Errorf("op: %w", context.Canceled), KindCancelled},
		{"network by message", errors.New("dial tcp: connection refused"), KindNetwork},
		{"extraction", &ExtractionError{Page: 2, Err: errors.New("bad xref")}, KindExtraction},
		{"unknown", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestAsCancelled(t *testing.T) {
	t.Run("wraps plain context error", func(t *testing.T) {
		err := AsCancelled(context.Canceled)
		assert.ErrorIs(t, err, ErrCancelled)
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := fmt.Errorf("%w: %w", ErrCancelled, context.Canceled)
		assert.Equal(t, inner, AsCancelled(inner))
	})
}

package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/models"
)

const (
	noTextContent   = "No text content available"
	maxSlideTitle   = 200
	uploadedAtFmt   = "2006-01-02"
	defaultDeckName = "Imported presentation"
)

// ImportPDF turns every page of a PDF into a slide and adds the result as a
// new presentation.
func (s *ContentService) ImportPDF(ctx context.Context, name string, r io.ReaderAt, size int64) (models.Presentation, error) {
	const op errs.Op = "contentService.ImportPDF"

	pages, err := extractPages(r, size)
	if err != nil {
		return models.Presentation{}, errs.E(errs.InvalidRequest, op, errs.Parameter("file"), err)
	}

	if strings.TrimSpace(name) == "" {
		name = defaultDeckName
	}

	p := models.Presentation{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		UploadedAt: s.now().Format(uploadedAtFmt),
		Slides:     slidesFromPages(pages),
	}

	if err := s.addPresentation(ctx, p); err != nil {
		return models.Presentation{}, errs.E(errs.Internal, op, errs.Msg("Failed to import presentation"), err)
	}

	s.log.Info().Str("id", p.ID).Int("slides", len(p.Slides)).Msg("presentation imported from pdf")

	return p, nil
}

// extractPages returns the plain text of every page. The pdf reader panics on
// some malformed input, which is reported as an error.
func extractPages(r io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("unreadable pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("unreadable pdf: %w", err)
	}

	total := reader.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep the page so slide numbers match page numbers.
			pages = append(pages, "")
			continue
		}

		pages = append(pages, text)
	}

	return pages, nil
}

// slidesFromPages builds one slide per page: the first non-empty line is the
// title and the rest is the content.
func slidesFromPages(pages []string) []models.Slide {
	slides := make([]models.Slide, 0, len(pages))

	for i, text := range pages {
		var lines []string
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}

		slide := models.Slide{
			ID:      i + 1,
			Title:   fmt.Sprintf("Slide %d", i+1),
			Content: noTextContent,
		}

		if len(lines) > 0 {
			slide.Title = truncate(lines[0], maxSlideTitle)
		}

		if len(lines) > 1 {
			slide.Content = strings.Join(lines[1:], "\n")
		}

		slides = append(slides, slide)
	}

	return slides
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}

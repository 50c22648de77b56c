package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
	"github.com/voyagent/voyagent/internal/repo"
)

// SeedService loads destination guides from a markdown file. Every level-2
// heading starts a destination; "Key: value" lines directly under it fill the
// destination record and the remaining prose becomes the travel document.
type SeedService struct {
	destinations *repo.DestinationRepo
	docs         *repo.DocumentRepo
	embeddings   *EmbeddingService
}

func NewSeedService(destinations *repo.DestinationRepo, docs *repo.DocumentRepo, embeddings *EmbeddingService) *SeedService {
	return &SeedService{destinations: destinations, docs: docs, embeddings: embeddings}
}

type GuideSection struct {
	Name string
	Meta map[string]string
	Body string
}

var guideMetaKeys = map[string]struct{}{
	"country":     {},
	"region":      {},
	"budget_tier": {},
	"climate":     {},
	"best_season": {},
	"tags":        {},
}

// ParseGuides splits a markdown guide file into per-destination sections.
func ParseGuides(source []byte) []GuideSection {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var sections []GuideSection
	var current *GuideSection
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n\n"))
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level == 2 {
			flush()
			current = &GuideSection{
				Name: strings.TrimSpace(string(heading.Text(source))),
				Meta: map[string]string{},
			}
			continue
		}
		if current == nil {
			continue
		}
		chunk := nodeText(node, source)
		if chunk == "" {
			continue
		}
		var prose []string
		for _, line := range strings.Split(chunk, "\n") {
			key, value, ok := splitMetaLine(line)
			if ok {
				current.Meta[key] = value
				continue
			}
			prose = append(prose, line)
		}
		if len(prose) > 0 {
			body = append(body, strings.Join(prose, "\n"))
		}
	}
	flush()
	return sections
}

func splitMetaLine(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(line[:idx]), " ", "_"))
	if _, ok := guideMetaKeys[key]; !ok {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func nodeText(node ast.Node, source []byte) string {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return strings.TrimSpace(string(node.Text(source)))
	}
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSpace(sb.String())
}

type SeedReport struct {
	Destinations int
	Documents    int
	Embedded     int
	Failed       []string
}

func (s *SeedService) Import(ctx context.Context, source []byte, embed bool) (*SeedReport, error) {
	sections := ParseGuides(source)
	if len(sections) == 0 {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx)
	report := &SeedReport{}
	now := timeutil.NowUnix()
	for _, section := range sections {
		dest := &model.Destination{
			ID:          newID(),
			Name:        section.Name,
			Country:     section.Meta["country"],
			Region:      strings.ToLower(section.Meta["region"]),
			BudgetTier:  strings.ToLower(section.Meta["budget_tier"]),
			Climate:     strings.ToLower(section.Meta["climate"]),
			BestSeason:  section.Meta["best_season"],
			Tags:        section.Meta["tags"],
			Description: firstLine(section.Body),
			Ctime:       now,
			Mtime:       now,
		}
		if err := s.destinations.Create(ctx, dest); err != nil {
			logger.Warn("seed destination failed", zap.String("name", section.Name), zap.Error(err))
			report.Failed = append(report.Failed, section.Name)
			continue
		}
		report.Destinations++

		doc := &model.TravelDocument{
			ID:              newID(),
			DestinationID:   dest.ID,
			DestinationName: dest.Name,
			Content:         section.Name + "\n" + section.Body,
			Ctime:           now,
			Mtime:           now,
		}
		if err := s.docs.Create(ctx, doc); err != nil {
			logger.Warn("seed document failed", zap.String("name", section.Name), zap.Error(err))
			report.Failed = append(report.Failed, section.Name)
			continue
		}
		report.Documents++

		if embed {
			if err := s.embeddings.EmbedDocument(ctx, doc.ID, doc.Content); err != nil {
				logger.Warn("seed embed failed, left for backfill", zap.String("doc_id", doc.ID), zap.Error(err))
				continue
			}
			report.Embedded++
		}
	}
	return report, nil
}

func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

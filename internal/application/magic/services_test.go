package magic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/infra/ai/prompt"
	"github.com/bryanwahyu/docmind/internal/infra/budget"
	"github.com/bryanwahyu/docmind/internal/infra/db/memory"
	"github.com/bryanwahyu/docmind/internal/infra/extract"
	"github.com/bryanwahyu/docmind/internal/infra/storage"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

type spyLLM struct {
	system, user string
	calls        int
	reply        string
}

func (s *spyLLM) Complete(_ context.Context, system, user, _ string) (string, error) {
	s.calls++
	s.system, s.user = system, user
	return s.reply, nil
}

type fixture struct {
	svc   *Service
	llm   *spyLLM
	mem   *memory.Store
	store *storage.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	masterPath := filepath.Join(dir, "AI_MAGIC_PROMPT.md")
	require.NoError(t, os.WriteFile(masterPath, []byte("  You are a consultant.\n"), 0o644))

	local, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	mem := memory.New()
	llm := &spyLLM{reply: "REPORT"}
	return &fixture{
		svc: &Service{
			Docs:      mem.Documents(),
			Results:   mem.Results(),
			Store:     local,
			Extractor: extract.New(),
			Master:    prompt.NewMasterPrompt(masterPath),
			LLM:       llm,
			Log:       logger.Nop(),
		},
		llm:   llm,
		mem:   mem,
		store: local,
	}
}

func (f *fixture) addDocument(t *testing.T, id, filename, body string, withBytes bool) {
	t.Helper()
	ctx := context.Background()
	key := id + "_" + filename
	if withBytes {
		require.NoError(t, f.store.Put(ctx, key, strings.NewReader(body), int64(len(body))))
	}
	require.NoError(t, f.mem.Documents().Save(ctx, &documents.Document{
		ID: documents.DocumentID(id), UserID: "u1", Filename: filename, StorageKey: key,
	}))
}

func (f *fixture) addResult(t *testing.T, docID, typ, content string, at time.Time) {
	t.Helper()
	require.NoError(t, f.mem.Results().Create(context.Background(), &results.Result{
		ID: results.ResultID(typ + at.String()), DocumentID: docID, AnalysisType: results.AnalysisType(typ), Content: content, CreatedAt: at,
	}))
}

func TestSynthesize_MissingSourceAndNoResultsStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "d1", "gone.txt", "", false)

	out, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.Equal(t, "REPORT", out)
	assert.Equal(t, 1, f.llm.calls)
	assert.Equal(t, "You are a consultant.", f.llm.system)
	assert.Contains(t, f.llm.user, SourceMissingText)
	assert.Contains(t, f.llm.user, NoResultsText)
	assert.NotContains(t, f.llm.user, "intended for the audience")
}

func TestSynthesize_ComposesBlocksNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "d1", "note.txt", "  contract text  ", true)
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f.addResult(t, "d1", "summary", "old summary", t0)
	f.addResult(t, "d1", "risks", "new risks", t0.Add(time.Minute))

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)

	want := "Original document:\n\ncontract text\n\n" +
		"Structured analysis (extracted by the system):\n\n" +
		"--- risks ---\nnew risks\n\n--- summary ---\nold summary"
	assert.Equal(t, want, f.llm.user)
}

func TestSynthesize_EmptyDocumentPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "d1", "blank.txt", "   \n", true)

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.Contains(t, f.llm.user, EmptyText)
}

func TestSynthesize_UnreadableSourceDegrades(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "d1", "broken.docx", "not a zip archive", true)

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.Contains(t, f.llm.user, UnreadableText)
}

func TestSynthesize_BudgetsApplied(t *testing.T) {
	f := newFixture(t)
	f.svc.DocumentBudget = budget.Document(10)
	f.svc.ResultBudget = budget.Result(5)
	f.addDocument(t, "d1", "long.txt", strings.Repeat("a", 11), true)
	f.addResult(t, "d1", "summary", "bbbbbbbb", time.Now())

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.Contains(t, f.llm.user, strings.Repeat("a", 10)+budget.DocumentMarker)
	assert.NotContains(t, f.llm.user, strings.Repeat("a", 11))
	assert.Contains(t, f.llm.user, "--- summary ---\nbbbbb"+budget.ResultMarker)
}

func TestSynthesize_Audience(t *testing.T) {
	cases := []struct {
		audience string
		want     string
	}{
		{"legal", "The report is intended for the audience: legal counsel."},
		{" Manager ", "The report is intended for the audience: executive management."},
		{"board of directors", "The report is intended for the audience: board of directors."},
	}
	for _, tc := range cases {
		t.Run(tc.audience, func(t *testing.T) {
			f := newFixture(t)
			f.addDocument(t, "d1", "note.txt", "hi", true)

			_, err := f.svc.Synthesize(context.Background(), "d1", tc.audience)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(f.llm.user, tc.want+" Adapt the tone and wording accordingly."), f.llm.user)
		})
	}
}

func TestSynthesize_MasterPromptMissing(t *testing.T) {
	f := newFixture(t)
	f.svc.Master = prompt.NewMasterPrompt(filepath.Join(t.TempDir(), "absent.md"))
	f.addDocument(t, "d1", "note.txt", "hi", true)

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.ErrorIs(t, err, ai.ErrPromptAssetMissing)
	assert.Zero(t, f.llm.calls)
}

func TestSynthesize_DocumentNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Synthesize(context.Background(), "nope", "business")
	require.ErrorIs(t, err, ai.ErrDocumentNotFound)
	assert.Zero(t, f.llm.calls)
}

func TestSynthesize_ReportIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, "d1", "note.txt", "hi", true)

	_, err := f.svc.Synthesize(context.Background(), "d1", "")
	require.NoError(t, err)
	list, err := f.mem.Results().ListByDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

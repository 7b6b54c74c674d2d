package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/entrypoint"
	"github.com/mrlokans/deepread/internal/highlights"
)

type testEnv struct {
	dir string
}

func setupEnv(t *testing.T) *testEnv {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "deepread.db"))
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "backups"))
	t.Setenv("MARKDOWN_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "error")
	return &testEnv{dir: dir}
}

func execute(t *testing.T, args ...string) (string, error) {
	addFile, addTitle, addAuthor = "", "", ""
	backupOut, importFile, importStrategy = "", "", string(backup.StrategyLWW)
	notesDocument, exportDir = "", ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) highlightFirstDocument(t *testing.T) string {
	ctx := context.Background()
	app, err := entrypoint.NewApp(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	docs, err := app.Documents.List()
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	snap, _, err := app.Highlights.CreateNoteOverRange(ctx, docs[0].ID, highlights.Range(0, 14, 19), highlights.NoteLayout{})
	require.NoError(t, err)
	_, err = app.Highlights.UpdateAnnotationText(ctx, docs[0].ID, snap.Annotations[0].ID, "forest")
	require.NoError(t, err)
	return docs[0].ID
}

func TestVersionCmd(t *testing.T) {
	setupEnv(t)
	version = "1.2.3"
	defer func() { version = "dev" }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "deepread version 1.2.3")
}

func TestDocumentsCommands(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents found")

	path := env.write(t, "walden.txt", "I went to the woods\nbecause I wished.\n\n\nTo live deliberately.\n")
	out, err = execute(t, "documents", "add", "--file", path, "--author", "Thoreau")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "walden" (2 paragraphs)`)

	out, err = execute(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Author:     Thoreau")
	assert.Contains(t, out, "Total: 1 documents")

	_, err = execute(t, "documents", "add", "--file", env.write(t, "empty.txt", "\n\n"))
	assert.Error(t, err)

	_, err = execute(t, "documents", "add")
	assert.Error(t, err, "file flag is required")
}

func TestBackupCommands(t *testing.T) {
	env := setupEnv(t)
	_, err := execute(t, "documents", "add", "--file", env.write(t, "walden.json",
		`{"title": "Walden", "paragraphs": ["I went to the woods because I wished to live deliberately."]}`))
	require.NoError(t, err)
	env.highlightFirstDocument(t)

	archivePath := filepath.Join(env.dir, "archive.json")
	out, err := execute(t, "backup", "export", "--out", archivePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup of 1 documents")

	archive, err := backup.ReadFile(archivePath)
	require.NoError(t, err)
	require.Len(t, archive.Documents, 1)
	assert.Len(t, archive.Documents[0].Highlights, 1)

	out, err = execute(t, "backup", "export")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(env.dir, "backups"))

	out, err = execute(t, "backup", "import", "--file", archivePath, "--strategy", "replace")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 documents (0 new) with replace")
	assert.Contains(t, out, "Highlights:  1")

	_, err = execute(t, "backup", "import", "--file", archivePath, "--strategy", "merge")
	assert.Error(t, err)

	_, err = execute(t, "backup", "import", "--file", env.write(t, "bad.json", "nope"))
	assert.ErrorIs(t, err, backup.ErrInvalidArchive)
}

func TestNotesCommands(t *testing.T) {
	env := setupEnv(t)
	_, err := execute(t, "documents", "add", "--file", env.write(t, "walden.json",
		`{"title": "Walden", "paragraphs": ["I went to the woods because I wished to live deliberately."]}`))
	require.NoError(t, err)

	out, err := execute(t, "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No notes found")

	docID := env.highlightFirstDocument(t)

	out, err = execute(t, "notes", "list", "--document", docID)
	require.NoError(t, err)
	assert.Contains(t, out, "> woods")
	assert.Contains(t, out, "forest")

	out, err = execute(t, "notes", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 documents (1 highlights)")
	assert.FileExists(t, filepath.Join(env.dir, "exports", "Walden.md"))

	out, err = execute(t, "notes", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "Repaired 0 records in 1 documents")
}

func TestInvalidConfigurationFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE_BACKEND", "cassandra")

	_, err := execute(t, "documents", "list")

	assert.ErrorContains(t, err, "invalid configuration")
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("  first line\r\nsecond line\r\n\r\n\n third \n")

	assert.Equal(t, []string{"first line second line", "third"}, got)
	assert.Empty(t, splitParagraphs("\n \n"))
}

func TestReadDocumentFile(t *testing.T) {
	env := &testEnv{dir: t.TempDir()}

	doc, err := readDocumentFile(env.write(t, "book.JSON", `{"title": " Walden ", "author": "Thoreau", "paragraphs": ["a", "b"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Walden", doc.Title)
	assert.Equal(t, "Thoreau", doc.Author)
	assert.Equal(t, []entities.Paragraph{{Text: "a"}, {Text: "b"}}, doc.Paragraphs)

	_, err = readDocumentFile(env.write(t, "broken.json", "{"))
	assert.Error(t, err)

	_, err = readDocumentFile(filepath.Join(env.dir, "missing.txt"))
	assert.Error(t, err)
}

package batch

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvallespi/dupscan/internal/analysis"
	"github.com/mvallespi/dupscan/internal/config"
	"github.com/mvallespi/dupscan/internal/models"
	"github.com/mvallespi/dupscan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSubmission(t *testing.T, root, id string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	f, err := os.Create(filepath.Join(dir, "entrega.zip"))
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SubmissionsDir: filepath.Join(t.TempDir(), "entregas"),
		OutputDir:      filepath.Join(t.TempDir(), "consolidado"),
		Mode:           config.ModeJavaOnly,
	}
}

func newTestRunner(t *testing.T, cfg *config.Config) (*Runner, *store.FileStore) {
	t.Helper()
	fs := store.Open(cfg.StorePath())
	pool := analysis.NewWorkerPool(context.Background())
	t.Cleanup(pool.Close)
	return NewRunner(cfg, fs, pool, nil, nil), fs
}

const mainJava = "public class Main {\n    public static void main(String[] args) {\n        System.out.println(\"hola\");\n    }\n}\n"
const utilJava = "public class Util {\n    static int twice(int n) { return n * 2; }\n}\n"

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.SubmissionsDir, 0o755))
	writeSubmission(t, cfg.SubmissionsDir, "ana", map[string]string{
		"proyecto/src/Main.java": mainJava,
		"proyecto/src/Util.java": utilJava,
	})
	writeSubmission(t, cfg.SubmissionsDir, "bruno", map[string]string{
		"proyecto/src/Main.java": "public class Main {}\n",
	})

	runner, fs := newTestRunner(t, cfg)
	report, results, err := runner.Run(context.Background(), "run-1", "")
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, models.ProcessOK, res.Status)
	}

	assert.Equal(t, 2, report.TotalProjects)
	assert.Equal(t, 0, report.TotalIdentical)
	assert.Equal(t, 0, report.TotalPartial)

	assert.Equal(t, 2, fs.Len())
	assert.FileExists(t, cfg.StorePath())
	assert.FileExists(t, cfg.ReportPath())
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "ana.txt"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "bruno.txt"))
}

func TestRun_AccumulatesAcrossSessions(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.SubmissionsDir, 0o755))
	writeSubmission(t, cfg.SubmissionsDir, "ana", map[string]string{
		"proyecto/src/Main.java": mainJava,
	})
	writeSubmission(t, cfg.SubmissionsDir, "bruno", map[string]string{
		"proyecto/src/Main.java": "public class Main {}\n",
	})

	runner, _ := newTestRunner(t, cfg)
	report, _, err := runner.Run(context.Background(), "run-1", "")
	require.NoError(t, err)
	require.Equal(t, 0, report.TotalIdentical)

	// Second session: fresh store opened on the same file, a new cohort
	// directory containing a copy of ana's project.
	laterDir := filepath.Join(t.TempDir(), "entregas_2")
	require.NoError(t, os.MkdirAll(laterDir, 0o755))
	writeSubmission(t, laterDir, "carla", map[string]string{
		"proyecto/src/Main.java": mainJava,
	})

	runner2, _ := newTestRunner(t, cfg)
	report2, _, err := runner2.Run(context.Background(), "run-2", laterDir)
	require.NoError(t, err)

	assert.Equal(t, 3, report2.TotalProjects)
	require.Equal(t, 1, report2.TotalIdentical)
	assert.ElementsMatch(t, []string{"ana", "carla"}, report2.Identical[0].Members)
}

func TestRun_SubmissionWithoutArchiveIsSkipped(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.SubmissionsDir, 0o755))
	writeSubmission(t, cfg.SubmissionsDir, "ana", map[string]string{
		"proyecto/src/Main.java": mainJava,
	})
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.SubmissionsDir, "vacio"), 0o755))

	runner, fs := newTestRunner(t, cfg)
	_, results, err := runner.Run(context.Background(), "run-1", "")
	require.NoError(t, err)

	byID := make(map[string]models.ProcessResult)
	for _, res := range results {
		byID[res.SubmissionID] = res
	}
	assert.Equal(t, models.ProcessOK, byID["ana"].Status)
	assert.Equal(t, models.ProcessSkipped, byID["vacio"].Status)
	assert.Equal(t, 1, fs.Len())
}

func TestRun_CorruptZipFailsWithoutAbortingBatch(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.SubmissionsDir, 0o755))
	writeSubmission(t, cfg.SubmissionsDir, "ana", map[string]string{
		"proyecto/src/Main.java": mainJava,
	})
	rotoDir := filepath.Join(cfg.SubmissionsDir, "roto")
	require.NoError(t, os.MkdirAll(rotoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rotoDir, "entrega.zip"), []byte("not a zip"), 0o644))

	runner, fs := newTestRunner(t, cfg)
	report, results, err := runner.Run(context.Background(), "run-1", "")
	require.NoError(t, err)

	byID := make(map[string]models.ProcessResult)
	for _, res := range results {
		byID[res.SubmissionID] = res
	}
	assert.Equal(t, models.ProcessOK, byID["ana"].Status)
	assert.Equal(t, models.ProcessFailed, byID["roto"].Status)
	assert.NotEmpty(t, byID["roto"].Detail)
	assert.Equal(t, 1, fs.Len())
	assert.Equal(t, 1, report.TotalProjects)
}

func TestProcessOne_PersistsImmediately(t *testing.T) {
	cfg := testConfig(t)
	subDir := filepath.Join(t.TempDir(), "diego")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	writeSubmission(t, filepath.Dir(subDir), "diego", map[string]string{
		"proyecto/src/Main.java": mainJava,
	})

	runner, _ := newTestRunner(t, cfg)
	res, err := runner.ProcessOne(context.Background(), models.Submission{ID: "diego", Path: subDir})
	require.NoError(t, err)
	assert.Equal(t, models.ProcessOK, res.Status)

	// A fresh store sees the record without any batch having run.
	reopened := store.Open(cfg.StorePath())
	records, err := reopened.AllRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "diego", records[0].SubmissionID)
}

func TestListSubmissions_DirsOnlySorted(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.SubmissionsDir, "zoe"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.SubmissionsDir, "ana"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SubmissionsDir, "notas.txt"), []byte("x"), 0o644))

	runner, _ := newTestRunner(t, cfg)
	subs, err := runner.ListSubmissions("")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "ana", subs[0].ID)
	assert.Equal(t, "zoe", subs[1].ID)
}

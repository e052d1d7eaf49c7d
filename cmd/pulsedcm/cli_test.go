package pulsedcm

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pulsedcm/pulsedcm/internal/config"
	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

var patientName = types.Tag{Group: 0x0010, Element: 0x0010}

func writeDICOM(t *testing.T, p string) {
	t.Helper()
	var els []*dicom.Element
	for _, e := range []struct {
		t    tag.Tag
		data any
	}{
		{tag.FileMetaInformationVersion, []byte{0x00, 0x01}},
		{tag.MediaStorageSOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.7"}},
		{tag.MediaStorageSOPInstanceUID, []string{"1.2.3.4.5.6.7.8"}},
		{tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}},
		{tag.Modality, []string{"OT"}},
		{tag.PatientName, []string{"John Doe"}},
		{tag.PatientID, []string{"12345678"}},
	} {
		el, err := dicom.NewElement(e.t, e.data)
		require.NoError(t, err)
		els = append(els, el)
	}
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, dicom.Write(f, dicom.Dataset{Elements: els}))
	require.NoError(t, f.Close())
}

func resetFlags() {
	flagJobs, flagVerbose, flagNoColor = 0, false, true
	flagAnoPath, flagAction, flagPolicy, flagOut = ".", "", "", ""
	flagDry, flagPreviewOnly = false, false
	flagInclude, flagExclude, flagAudit = "", "", ""
	flagTagsPath, flagTagsJSON, flagTagsCSV, flagWithPixelData = ".", "", "", false
	flagPoliciesPolicy = ""
	flagHistoryAudit, flagHistoryLimit = "", 10
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func patientNameOf(t *testing.T, p string) (string, bool) {
	t.Helper()
	rec, err := record.DICOMStore{}.Open(p)
	require.NoError(t, err)
	el, ok := rec.Lookup(patientName)
	return el.Value, ok
}

func TestAno_WritesIntoOutDirectory(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))

	stdout, _, err := run(t, "", "ano", "-p", src, "--out", out, "--action", "replace")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote successfully to: "+filepath.Join(out, "a.dcm"))

	v, ok := patientNameOf(t, filepath.Join(out, "a.dcm"))
	require.True(t, ok)
	assert.Equal(t, "Anonymized", v)
	v, _ = patientNameOf(t, filepath.Join(src, "a.dcm"))
	assert.Equal(t, "John Doe", v)
}

func TestAno_OverwriteNeedsConfirmation(t *testing.T) {
	src := t.TempDir()
	p := filepath.Join(src, "a.dcm")
	writeDICOM(t, p)

	_, _, err := run(t, "n\n", "ano", "-p", src, "--action", "remove")
	require.ErrorIs(t, err, engine.ErrAborted)
	_, ok := patientNameOf(t, p)
	assert.True(t, ok)

	_, _, err = run(t, "", "ano", "-p", src, "--action", "remove")
	require.ErrorIs(t, err, engine.ErrAborted)

	stdout, _, err := run(t, "yes\n", "ano", "-p", src, "--action", "remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, "confirm to overwrite")
	_, ok = patientNameOf(t, p)
	assert.False(t, ok)
}

func TestAno_DryRunPreviewsWithoutWriting(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	p := filepath.Join(src, "a.dcm")
	writeDICOM(t, p)
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	stdout, _, err := run(t, "", "ano", "-p", src, "--out", out, "--dry", "--action", "zero")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(0010,0010) PN PatientName")
	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoFileExists(t, filepath.Join(out, "a.dcm"))
}

func TestAno_FailedFileSetsStatus(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))
	writeDICOM(t, filepath.Join(src, "c.dcm"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.dcm"), []byte("garbage"), 0644))

	_, stderr, err := run(t, "", "ano", "-p", src, "--out", out, "--jobs", "2")
	require.ErrorIs(t, err, errFilesFailed)
	assert.Contains(t, stderr, "error: "+filepath.Join(src, "b.dcm")+": read error")
	assert.Equal(t, 1, strings.Count(stderr, filepath.Join(src, "b.dcm")))
	assert.FileExists(t, filepath.Join(out, "a.dcm"))
	assert.FileExists(t, filepath.Join(out, "c.dcm"))
}

func TestAno_InterruptedRunFails(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))
	writeDICOM(t, filepath.Join(src, "b.dcm"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ano, _, err := rootCmd.Find([]string{"ano"})
	require.NoError(t, err)
	ano.SetContext(ctx)
	t.Cleanup(func() {
		rootCmd.SetContext(context.Background())
		ano.SetContext(context.Background())
	})

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs([]string{"ano", "-p", src, "--out", out})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	err = rootCmd.ExecuteContext(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errFilesFailed)
	assert.Contains(t, stderr.String(), "skipped: "+filepath.Join(src, "a.dcm")+": not processed")
	assert.Contains(t, stderr.String(), "skipped: "+filepath.Join(src, "b.dcm")+": not processed")
	assert.NotContains(t, stdout.String(), "Wrote successfully")
	assert.NoFileExists(t, filepath.Join(out, "a.dcm"))
	assert.NoFileExists(t, filepath.Join(out, "b.dcm"))
}

func TestAno_AuditLog(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")

	_, _, err := run(t, "", "ano", "-p", src, "--out", out, "--audit", auditPath, "--policy", "strict")
	require.NoError(t, err)
	b, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.Equal(t, "strict", rec["policy"])
	assert.NotContains(t, string(b), "John Doe")
}

func TestHistory_ListsRunsNewestFirst(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")

	_, _, err := run(t, "", "ano", "-p", src, "--out", out, "--audit", auditPath, "--policy", "moderate")
	require.NoError(t, err)
	_, _, err = run(t, "", "ano", "-p", src, "--out", out, "--audit", auditPath, "--policy", "strict", "--action", "remove")
	require.NoError(t, err)

	stdout, _, err := run(t, "", "history", "--audit", auditPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "moderate")
	assert.Less(t, strings.Index(stdout, "strict"), strings.Index(stdout, "moderate"))

	stdout, _, err = run(t, "", "history", "--audit", auditPath, "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "strict")
	assert.NotContains(t, stdout, "moderate")
}

func TestHistory_NeedsAuditLog(t *testing.T) {
	_, _, err := run(t, "", "history")
	assert.Error(t, err)

	_, _, err = run(t, "", "history", "--audit", filepath.Join(t.TempDir(), "none.jsonl"))
	assert.Error(t, err)
}

func TestAno_InvalidFlags(t *testing.T) {
	src := t.TempDir()
	_, _, err := run(t, "", "ano", "-p", src, "--action", "shred")
	assert.Error(t, err)
	_, _, err = run(t, "", "ano", "-p", src, "--policy", "paranoid")
	assert.Error(t, err)
	_, _, err = run(t, "", "ano", "-p", filepath.Join(src, "missing"))
	assert.Error(t, err)
}

func TestAno_LocalConfigApplies(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))
	action := "replace"
	require.NoError(t, config.Save(filepath.Join(src, ".pulsedcm.yml"), config.FileConfig{Action: &action, Out: &out}))

	_, _, err := run(t, "", "ano", "-p", src)
	require.NoError(t, err)
	v, ok := patientNameOf(t, filepath.Join(out, "a.dcm"))
	require.True(t, ok)
	assert.Equal(t, "Anonymized", v)
}

func TestTags_ShortAndExport(t *testing.T) {
	src := t.TempDir()
	writeDICOM(t, filepath.Join(src, "a.dcm"))

	stdout, _, err := run(t, "", "tags", "short", "-p", src)
	require.NoError(t, err)
	assert.Contains(t, stdout, "PatientName")
	assert.Contains(t, stdout, "Modality")
	assert.NotContains(t, stdout, "PatientID")

	exp := filepath.Join(t.TempDir(), "tags")
	stdout, _, err = run(t, "", "tags", "patientid", "-p", src, "--json", exp)
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved json as "+exp+".json")
	b, err := os.ReadFile(exp + ".json")
	require.NoError(t, err)
	var rows []types.Entry
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "(0010 0020)", rows[0].Tag)
	assert.Equal(t, "12345678", rows[0].Value)
}

func TestPolicies(t *testing.T) {
	stdout, _, err := run(t, "", "policies")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(0010,0010)")
	assert.Contains(t, stdout, "PatientName")
	assert.Contains(t, stdout, "60 fields in the strict policy")
	assert.Less(t, strings.Index(stdout, "(0008,0050)"), strings.Index(stdout, "(0010,0010)"))

	stdout, _, err = run(t, "", "policies", "--policy", "basic")
	require.NoError(t, err)
	assert.Contains(t, stdout, "30 fields in the basic policy")
}

func TestConfigInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".pulsedcm.yml")
	_, _, err := run(t, "", "config", "init", "--output", p, "--action", "Remove", "--policy", "moderate", "--jobs", "3")
	require.NoError(t, err)
	cfg, err := config.LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Action)
	assert.Equal(t, "remove", *cfg.Action)
	assert.Equal(t, "moderate", *cfg.Policy)
	assert.Equal(t, 3, *cfg.Jobs)
	assert.Nil(t, cfg.Out)
}

func TestAskYesNo(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, " yes \n": true, "n\n": false, "\n": false, "": false, "y": true}
	for in, want := range cases {
		var out bytes.Buffer
		got := askYesNo(strings.NewReader(in), &out)("overwrite?")
		assert.Equal(t, want, got, "input %q", in)
		assert.Contains(t, out.String(), "overwrite? [y/N]")
	}
}

func TestPickHelpers(t *testing.T) {
	local, global := "local", "global"
	assert.Equal(t, "cli", pickString("cli", &local, &global))
	assert.Equal(t, "local", pickString("", &local, &global))
	assert.Equal(t, "global", pickString("", nil, &global))
	assert.Equal(t, "", pickString("", nil, nil))

	l, g := 2, 3
	assert.Equal(t, 1, pickInt(1, &l, &g))
	assert.Equal(t, 3, pickInt(0, nil, &g))

	f := false
	assert.False(t, pickBool(false, &f, nil))
	assert.True(t, pickBool(true, &f, nil))
	assert.Equal(t, "zero", orDefault("", "zero"))
}

func TestCompletion(t *testing.T) {
	stdout, _, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pulsedcm")

	_, _, err = run(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestCompletion_PolicyAndActionValues(t *testing.T) {
	stdout, _, err := run(t, "", cobra.ShellCompRequestCmd, "ano", "--policy", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "moderate", "strict", ":4"}, strings.Fields(stdout))

	stdout, _, err = run(t, "", cobra.ShellCompRequestCmd, "config", "init", "--action", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"zero", "replace", "remove", ":4"}, strings.Fields(stdout))
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "Team Member,SSN,Hours Per Week\n" +
	"K Compton,123-45-6789,10\n" +
	"A Zimmer,,\n" +
	"Jane Doe,111-22-3333,20\n"

const wantCSV = "Hours Per Week,Team Member,Department Code,Vacation Scheduled Time Off," +
	"Wage Rate,SSN,Completion,Collection,Approved by,Approved on\r\n" +
	"40.0,\"Compton, K\",,,,XXX-XX-6789,,,,\r\n" +
	"20,\"Doe, Jane\",,,,XXX-XX-3333,,,,\r\n" +
	",,,,,,,,\" \",\" \"\r\n"

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noBOM keeps expected output byte-exact.
func noBOM(t *testing.T) {
	t.Helper()
	t.Setenv("EXPORT_BOM", "false")
}

func TestTransform_FileToFile(t *testing.T) {
	noBOM(t)
	in := writeFile(t, "export.csv", sampleCSV)
	out := filepath.Join(t.TempDir(), "payroll.csv")

	_, stderr, err := run(t, "", "transform", "--in", in, "--out", out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(got))
	assert.Contains(t, stderr, "transform complete")
	assert.NotContains(t, stderr, "123-45-6789")
}

func TestTransform_StdinToStdout(t *testing.T) {
	noBOM(t)

	stdout, _, err := run(t, sampleCSV, "transform", "--in", "-")
	require.NoError(t, err)
	assert.Equal(t, wantCSV, stdout)
}

func TestTransform_DefaultBOM(t *testing.T) {
	stdout, _, err := run(t, sampleCSV, "transform", "--in", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "\xEF\xBB\xBF"), "default export starts with a BOM")
}

func TestTransform_XLSXByExtension(t *testing.T) {
	in := writeFile(t, "export.csv", sampleCSV)
	out := filepath.Join(t.TempDir(), "payroll.xlsx")

	_, _, err := run(t, "", "transform", "--in", in, "--out", out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("payroll")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Compton, K", rows[1][1])
	assert.Equal(t, " ", rows[3][8])
}

func TestTransform_RulesFile(t *testing.T) {
	noBOM(t)
	rules := writeFile(t, "rules.yaml", "rules:\n  - {name: doe, pattern: \"doe, j\", field: Wage Rate, value: \"15.00\"}\n")

	stdout, _, err := run(t, sampleCSV, "transform", "--in", "-", "--rules", rules)
	require.NoError(t, err)

	assert.Contains(t, stdout, "10,\"Compton, K\"", "custom rules replace the defaults")
	assert.Contains(t, stdout, "20,\"Doe, Jane\",,,15.00,XXX-XX-3333")
}

func TestTransform_Strict(t *testing.T) {
	input := "Team Member,SSN,Hours Per Week\nJane Doe,111-22-3333\n"

	_, _, err := run(t, input, "transform", "--in", "-")
	require.NoError(t, err, "decode errors are reported, not fatal")

	_, _, err = run(t, input, "transform", "--in", "-", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 decode errors")
}

func TestTransform_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "missing in", args: []string{"transform"}, wantErr: `required flag(s) "in" not set`},
		{name: "missing file", args: []string{"transform", "--in", "/nonexistent/export.csv"}, wantErr: "open input"},
		{name: "bad format", stdin: sampleCSV, args: []string{"transform", "--in", "-", "--format", "pdf"}, wantErr: "unsupported format"},
		{name: "empty input", stdin: "", args: []string{"transform", "--in", "-"}, wantErr: "FILE005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransform_EnvFile(t *testing.T) {
	t.Setenv("EXPORT_BOM", "false")
	envFile := writeFile(t, "payroll.env", "EXPORT_DELIMITER=;\n")
	t.Cleanup(func() { os.Unsetenv("EXPORT_DELIMITER") })

	stdout, _, err := run(t, sampleCSV, "--env-file", envFile, "transform", "--in", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Hours Per Week;Team Member;"), stdout)
}

func TestRulesCommand(t *testing.T) {
	stdout, _, err := run(t, "", "rules")
	require.NoError(t, err)

	assert.Contains(t, stdout, "rules:")
	assert.Contains(t, stdout, "compton, k")
	assert.Contains(t, stdout, "field: Hours Per Week")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "payroll dev\n", stdout)
}

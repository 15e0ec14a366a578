package sdk

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/logx"
	"droidprep/internal/paths"
)

type fakeUI struct {
	infos     []string
	successes []string
	termsErr  error
	termsSeen int
}

func (u *fakeUI) Info(msg string)         { u.infos = append(u.infos, msg) }
func (u *fakeUI) Success(msg string)      { u.successes = append(u.successes, msg) }
func (u *fakeUI) FinalSuccess(msg string) {}
func (u *fakeUI) YesNo(prompt string) bool {
	return true
}
func (u *fakeUI) Input(prompt string) (string, error) { return "", errors.New("no input scripted") }
func (u *fakeUI) Terms(url, prompt string) error {
	u.termsSeen++
	return u.termsErr
}
func (u *fakeUI) Background(ctx context.Context, title string, work func(context.Context) error) error {
	return work(ctx)
}

type runnerCall struct {
	command string
	args    []string
	opts    execx.RunOptions
}

// fakeRunner answers each invocation from errs in order, defaulting to
// success once the script runs out.
type fakeRunner struct {
	calls []runnerCall
	errs  []error
}

func (r *fakeRunner) Run(ctx context.Context, command string, args []string, opts execx.RunOptions) (execx.RunResult, error) {
	r.calls = append(r.calls, runnerCall{command: command, args: args, opts: opts})
	if len(r.errs) == 0 {
		return execx.RunResult{}, nil
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return execx.RunResult{}, err
}

func testProvisioner(t *testing.T) (*Provisioner, *fakeUI, *fakeRunner) {
	t.Helper()
	root := t.TempDir()

	pp, err := paths.Resolve(root)
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}
	if err := pp.EnsureSkeleton(); err != nil {
		t.Fatalf("ensure skeleton: %v", err)
	}

	ui := &fakeUI{}
	runner := &fakeRunner{}
	return &Provisioner{
		Paths:  pp,
		Config: config.Default(),
		UI:     ui,
		Runner: runner,
		Log:    logx.Discard(),
	}, ui, runner
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("stub"), 0o755); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func TestUnpackShortCircuitsWhenManagerPresent(t *testing.T) {
	prov, ui, _ := testProvisioner(t)
	touch(t, prov.Paths.SdkManager())

	if err := prov.Unpack(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ui.successes) != 1 || !strings.Contains(ui.successes[0], "already been unpacked") {
		t.Errorf("expected short-circuit message, got %v", ui.successes)
	}
	if ui.termsSeen != 0 {
		t.Error("terms prompt should be skipped when the SDK is present")
	}
}

func TestUnpackFailsWhenTermsDeclined(t *testing.T) {
	prov, ui, _ := testProvisioner(t)
	t.Setenv(EnvNoTerms, "")
	os.Unsetenv(EnvNoTerms)
	ui.termsErr = console.ErrTermsDeclined

	err := prov.Unpack(context.Background())
	if !errors.Is(err, console.ErrTermsDeclined) {
		t.Fatalf("expected declined terms error, got %v", err)
	}
}

func TestUnpackSkipsTermsWithEnvOptOut(t *testing.T) {
	prov, ui, _ := testProvisioner(t)
	t.Setenv(EnvNoTerms, "1")
	ui.termsErr = console.ErrTermsDeclined
	// Point at an unreachable repository so the run fails after the terms
	// stage; what matters is that Terms was never consulted.
	prov.Config.SDK.RepositoryURL = "http://127.0.0.1:0/"

	err := prov.Unpack(context.Background())
	if err == nil {
		t.Fatal("expected download failure")
	}
	if errors.Is(err, console.ErrTermsDeclined) {
		t.Fatal("terms prompt should have been skipped")
	}
	if ui.termsSeen != 0 {
		t.Errorf("terms consulted %d times, want 0", ui.termsSeen)
	}
}

// toolsArchive builds a minimal command-line tools archive: a top-level
// cmdline-tools directory holding the launcher with the executable bit set.
func toolsArchive(t *testing.T, launcherName string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	header := &zip.FileHeader{Name: "cmdline-tools/bin/" + launcherName, Method: zip.Deflate}
	header.SetMode(0o755)
	entry, err := w.CreateHeader(header)
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := entry.Write([]byte("#!/bin/sh\n")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}

	readme, err := w.Create("cmdline-tools/NOTICE.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := readme.Write([]byte("notice")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUnpackDownloadsAndNormalizesLayout(t *testing.T) {
	prov, ui, _ := testProvisioner(t)
	t.Setenv(EnvNoTerms, "1")

	manager := prov.Paths.SdkManager()
	archive := toolsArchive(t, filepath.Base(manager))

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(archive)
	}))
	defer server.Close()
	prov.Config.SDK.RepositoryURL = server.URL + "/"

	if err := prov.Unpack(context.Background()); err != nil {
		t.Fatalf("unpack: %v", err)
	}

	info, err := os.Stat(manager)
	if err != nil {
		t.Fatalf("sdkmanager not placed at %s: %v", manager, err)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		t.Errorf("sdkmanager lost its executable bit: %v", info.Mode())
	}
	if requests != 1 {
		t.Errorf("archive fetched %d times, want 1", requests)
	}

	// A second run must not touch the network.
	if err := prov.Unpack(context.Background()); err != nil {
		t.Fatalf("second unpack: %v", err)
	}
	if requests != 1 {
		t.Errorf("second run re-downloaded the archive (%d requests)", requests)
	}
	found := false
	for _, msg := range ui.successes {
		if strings.Contains(msg, "already been unpacked") {
			found = true
		}
	}
	if !found {
		t.Errorf("second run should report the SDK as unpacked, got %v", ui.successes)
	}
}

func TestUnpackRecoversFromInterruptedExtraction(t *testing.T) {
	prov, _, _ := testProvisioner(t)
	t.Setenv(EnvNoTerms, "1")

	// Leftovers of a run cancelled mid-rename: the staged "latest" directory
	// exists and "cmdline-tools" was recreated empty, so no sdkmanager is in
	// place yet.
	staleLatest := filepath.Join(prov.Paths.SdkRoot, "latest", "bin")
	if err := os.MkdirAll(staleLatest, 0o755); err != nil {
		t.Fatalf("seed stale latest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staleLatest, "leftover"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(prov.Paths.SdkRoot, "cmdline-tools"), 0o755); err != nil {
		t.Fatalf("seed stale cmdline-tools: %v", err)
	}

	manager := prov.Paths.SdkManager()
	archive := toolsArchive(t, filepath.Base(manager))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()
	prov.Config.SDK.RepositoryURL = server.URL + "/"

	if err := prov.Unpack(context.Background()); err != nil {
		t.Fatalf("unpack: %v", err)
	}

	if _, err := os.Stat(manager); err != nil {
		t.Errorf("sdkmanager not placed at %s: %v", manager, err)
	}
	if _, err := os.Stat(filepath.Join(prov.Paths.SdkRoot, "latest")); !os.IsNotExist(err) {
		t.Errorf("stale latest directory still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(filepath.Dir(manager)), "leftover")); !os.IsNotExist(err) {
		t.Error("stale file carried into the normalized layout")
	}
}

func TestMissingPackages(t *testing.T) {
	prov, _, _ := testProvisioner(t)
	prov.Config.SDK.Packages = []config.PackageSpec{
		{ID: "platform-tools", Path: "platform-tools"},
		{ID: "platforms;android-30", Path: "platforms/android-30"},
	}

	if err := os.MkdirAll(filepath.Join(prov.Paths.SdkRoot, "platform-tools"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	missing, err := prov.MissingPackages()
	if err != nil {
		t.Fatalf("missing packages: %v", err)
	}
	if len(missing) != 1 || missing[0] != "platforms;android-30" {
		t.Errorf("missing = %v, want [platforms;android-30]", missing)
	}
}

func TestEnsurePackagesShortCircuitsWhenInstalled(t *testing.T) {
	prov, ui, runner := testProvisioner(t)
	for _, pkg := range prov.Config.SDK.Packages {
		if err := os.MkdirAll(filepath.Join(prov.Paths.SdkRoot, filepath.FromSlash(pkg.Path)), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	if err := prov.EnsurePackages(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("sdkmanager invoked %d times, want 0", len(runner.calls))
	}
	if len(ui.successes) != 1 || !strings.Contains(ui.successes[0], "already installed") {
		t.Errorf("expected already-installed message, got %v", ui.successes)
	}
}

func TestEnsurePackagesInvokesSdkManager(t *testing.T) {
	prov, _, runner := testProvisioner(t)

	if err := prov.EnsurePackages(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 3 {
		t.Fatalf("sdkmanager invoked %d times, want 3", len(runner.calls))
	}

	manager := prov.Paths.SdkManager()
	for i, call := range runner.calls {
		if call.command != manager {
			t.Errorf("call %d command = %q, want %q", i, call.command, manager)
		}
		if !call.opts.AutoYes {
			t.Errorf("call %d should auto-accept prompts", i)
		}
	}
	if len(runner.calls[0].args) != 1 || runner.calls[0].args[0] != "--update" {
		t.Errorf("first call args = %v, want [--update]", runner.calls[0].args)
	}
	if len(runner.calls[1].args) != 1 || runner.calls[1].args[0] != "--licenses" {
		t.Errorf("second call args = %v, want [--licenses]", runner.calls[1].args)
	}
	want := []string{"platform-tools", "platforms;android-30"}
	if got := runner.calls[2].args; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("install args = %v, want %v", got, want)
	}
}

func TestEnsurePackagesFailuresAreFatal(t *testing.T) {
	cases := []struct {
		name    string
		failAt  int
		wantMsg string
	}{
		{"update", 0, "update the Android SDK metadata"},
		{"licenses", 1, "accept the Android licenses"},
		{"install", 2, "install the required Android packages"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prov, _, runner := testProvisioner(t)
			runner.errs = make([]error, tc.failAt+1)
			runner.errs[tc.failAt] = errors.New("exit status 1")

			err := prov.EnsurePackages(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %v, want %q", err, tc.wantMsg)
			}
			if len(runner.calls) != tc.failAt+1 {
				t.Errorf("sdkmanager invoked %d times, want %d (stop at first failure)", len(runner.calls), tc.failAt+1)
			}
		})
	}
}

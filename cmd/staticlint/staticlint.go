// Command staticlint is the multichecker run over the dslf module.
//
// It combines a selection of golang.org/x/tools passes, every staticcheck SA analyzer plus the
// ST/S/QF analyzers listed in `config.json` next to the executable (a built-in list otherwise),
// bodyclose, errcheck, go-critic, and the redirectlocation analyzer. redirectlocation flags
// http.Redirect and http.RedirectHandler: both clean and re-encode the target, while the service
// must send the configured Location byte for byte.
//
//	go build -o cmd/staticlint/staticlint ./cmd/staticlint
//	cmd/staticlint/staticlint ./...
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/kisielk/errcheck/errcheck"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/appends"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/ifaceassert"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/testinggoroutine"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/timeformat"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/waitgroup"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/quickfix"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// Config is the name of the configuration file that specifies which analyzers to enable.
const Config = `config.json`

// ConfigData contains an array of analyzers.
type ConfigData struct {
	Staticcheck []string
}

// defaultStaticchecks are enabled when no configuration file is found.
var defaultStaticchecks = []string{"ST1005", "ST1000", "ST1020", "ST1013", "S1008", "S1021"}

// mychecks is a slice of all analyzers that will be executed by multichecker.
var mychecks []*analysis.Analyzer

// appendChecks appends analyzers from the given list if they match the criteria.
func appendChecks(analyzers []*lint.Analyzer, checks map[string]bool) {
	for _, v := range analyzers {
		if strings.HasPrefix(v.Analyzer.Name, "SA") || checks[v.Analyzer.Name] {
			mychecks = append(mychecks, v.Analyzer)
		}
	}
}

// passAnalyzers are the golang.org/x/tools passes relevant to an HTTP service.
var passAnalyzers = []*analysis.Analyzer{
	// correctness
	appends.Analyzer,
	assign.Analyzer,
	bools.Analyzer,
	composite.Analyzer,
	errorsas.Analyzer,
	ifaceassert.Analyzer,
	nilfunc.Analyzer,
	printf.Analyzer,
	shadow.Analyzer,
	shift.Analyzer,
	stdmethods.Analyzer,
	stringintconv.Analyzer,
	structtag.Analyzer,
	unmarshal.Analyzer,
	unreachable.Analyzer,
	unusedresult.Analyzer,
	// concurrency and lifecycles
	atomic.Analyzer,
	copylock.Analyzer,
	loopclosure.Analyzer,
	lostcancel.Analyzer,
	sigchanyzer.Analyzer,
	waitgroup.Analyzer,
	// http and tests
	httpresponse.Analyzer,
	defers.Analyzer,
	testinggoroutine.Analyzer,
	tests.Analyzer,
	timeformat.Analyzer,
}

// appendPassesChecks resets the list to the standard passes.
func appendPassesChecks() {
	mychecks = append([]*analysis.Analyzer(nil), passAnalyzers...)
}

// appendStaticcheckIoChecks adds analyzers from staticcheck.io (which in config.json) to the list.
func appendStaticcheckIoChecks(checks map[string]bool) {
	appendChecks(staticcheck.Analyzers, checks)
	appendChecks(stylecheck.Analyzers, checks)
	appendChecks(simple.Analyzers, checks)
	appendChecks(quickfix.Analyzers, checks)
}

// appendOtherPublicChecks adds additional public analyzers.
func appendOtherPublicChecks() {
	mychecks = append(mychecks, bodyclose.Analyzer)
	mychecks = append(mychecks, errcheck.Analyzer)
	mychecks = append(mychecks, analyzer.Analyzer)
}

// appendCustomChecks adds the analyzers of this module.
func appendCustomChecks() {
	mychecks = append(mychecks, RedirectLocationAnalyzer)
}

// loadChecks reads the enabled staticcheck analyzers from path.
func loadChecks(path string) (map[string]bool, error) {
	names := defaultStaticchecks

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		var cfg ConfigData
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		names = cfg.Staticcheck
	}

	checks := make(map[string]bool, len(names))
	for _, v := range names {
		checks[v] = true
	}
	return checks, nil
}

// main initializes the multichecker with the configured analyzers.
func main() {
	appfile, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "staticlint: %v\n", err)
		os.Exit(1)
	}
	checks, err := loadChecks(filepath.Join(filepath.Dir(appfile), Config))
	if err != nil {
		fmt.Fprintf(os.Stderr, "staticlint: %v\n", err)
		os.Exit(1)
	}

	appendPassesChecks()
	appendStaticcheckIoChecks(checks)
	appendOtherPublicChecks()
	appendCustomChecks()

	multichecker.Main(
		mychecks...,
	)
}

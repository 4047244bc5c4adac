package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/netrig/src/testrun"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", ts, id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", ts, id)
}

// PhaseResult prints a compact single-line phase summary.
func PhaseResult(w io.Writer, name, status, detail string, elapsed time.Duration) {
	icon := StatusIcon(status, UseColor())
	fmt.Fprintf(w, "  %-10s %s  %-50s (%s)\n", name, icon, detail, elapsed.Round(time.Millisecond))
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteTestJUnit writes test invocation results as JUnit XML for CI test
// reporting. Each backend becomes a test suite; each invocation becomes a
// test case named test/role. Timeouts are reported as failures of type
// "timed-out" so they stay distinguishable in the report.
func WriteTestJUnit(dir, backendName string, results []*testrun.Result, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	suite := JUnitTestSuite{
		Name: "netrig/" + backendName,
		Time: fmt.Sprintf("%.3f", elapsed.Seconds()),
	}

	failures := 0
	for _, res := range results {
		tc := JUnitTestCase{
			Name:      fmt.Sprintf("%s/%s", res.TestName, res.Role),
			Classname: "netrig." + backendName,
			Time:      fmt.Sprintf("%.3f", res.Duration.Seconds()),
		}
		if !res.Passed() {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s (exit %d)", res.Status, res.ExitCode),
				Type:    string(res.Status),
				Body:    string(res.Stderr),
			}
			failures++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}
	suite.Failures = failures

	root := JUnitTestSuites{
		Name:     "netrig",
		Tests:    suite.Tests,
		Failures: failures,
		Time:     fmt.Sprintf("%.3f", elapsed.Seconds()),
		Suites:   []JUnitTestSuite{suite},
	}

	path := filepath.Join(dir, "tests.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	f.WriteString(xml.Header)
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	f.WriteString("\n")

	return nil
}

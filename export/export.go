// Package export implements the Exporter contract: rendering a
// TestStatus plus its ordered per-step sequence into txt/csv/json (and
// an optional msgpack binary) files, local or S3-backed, with
// {session-id} filename substitution.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/loadcraft/iox"
	"github.com/justapithecus/loadcraft/reporter"
)

// FileType identifies the rendering and extension of an export output.
type FileType int

const (
	Txt FileType = iota
	Csv
	Json
	// Binary is a supplemental msgpack encoding of the same Report the
	// json file type carries, for compact machine-to-machine storage.
	Binary
)

func (t FileType) extension() string {
	switch t {
	case Csv:
		return "csv"
	case Json:
		return "json"
	case Binary:
		return "bin"
	default:
		return "txt"
	}
}

// SessionIDToken is replaced with the run's session_id in every output
// spec's filename pattern. Substitution happens after the default
// extension has already been appended.
const SessionIDToken = "{session-id}"

// stepSeparator is the literal banner placed between the test-level txt
// block and each step's block.
const stepSeparator = "\r\n\r\n----------------------------------------------------------------------\r\n\r\n"

// Destination describes where a rendered file is written: either a local
// directory or an S3 bucket/key-prefix, never both.
type Destination struct {
	Directory string
	S3Bucket  string
	S3Prefix  string
}

func (d Destination) isS3() bool { return d.S3Bucket != "" }

// OutputSpec is one (file-type, destination, filename-pattern) triple.
type OutputSpec struct {
	Type        FileType
	Destination Destination
	FileName    string
}

// DefaultOutputSpecs returns the standard txt/csv/json trio, directory
// "output", filename "{session-id}" — the Exporter's documented default
// set.
func DefaultOutputSpecs() []OutputSpec {
	specs := make([]OutputSpec, 0, 3)
	for _, t := range []FileType{Txt, Csv, Json} {
		specs = append(specs, OutputSpec{Type: t, Destination: Destination{Directory: "output"}, FileName: SessionIDToken})
	}
	return specs
}

func formatFileName(spec OutputSpec, sessionID string) string {
	ext := spec.Type.extension()
	name := spec.FileName
	if !strings.HasSuffix(name, "."+ext) {
		name = name + "." + ext
	}
	return strings.ReplaceAll(name, SessionIDToken, sessionID)
}

// Render produces the byte content for one output spec's file type.
func Render(fileType FileType, testStatus reporter.TestStatus, stepStatuses []reporter.StepStatus) ([]byte, error) {
	switch fileType {
	case Txt:
		return []byte(renderTxt(testStatus, stepStatuses)), nil
	case Csv:
		return []byte(renderCSV(testStatus, stepStatuses)), nil
	case Json:
		return json.Marshal(reporter.Report{TestStatus: testStatus, StepStatus: stepStatuses})
	case Binary:
		return msgpack.Marshal(reporter.Report{TestStatus: testStatus, StepStatus: stepStatuses})
	default:
		return nil, fmt.Errorf("export: unknown file type %d", fileType)
	}
}

func renderTxt(testStatus reporter.TestStatus, stepStatuses []reporter.StepStatus) string {
	content := testStatus.AsText()
	for _, step := range stepStatuses {
		content += stepSeparator + step.AsText()
	}
	return content
}

func renderCSV(testStatus reporter.TestStatus, stepStatuses []reporter.StepStatus) string {
	var b strings.Builder
	for _, step := range stepStatuses {
		b.WriteString(testStatus.AsCSV())
		b.WriteString(";")
		b.WriteString(step.AsCSV())
		b.WriteString("\r\n")
	}
	return b.String()
}

// Write renders and persists every output spec. The first failure
// (render or I/O) short-circuits the remaining specs and is wrapped as
// an ExportFailure.
func Write(specs []OutputSpec, testStatus reporter.TestStatus, stepStatuses []reporter.StepStatus) error {
	for _, spec := range specs {
		content, err := Render(spec.Type, testStatus, stepStatuses)
		if err != nil {
			return fmt.Errorf("export failure: %w", err)
		}

		fileName := formatFileName(spec, testStatus.SessionID)

		if spec.Destination.isS3() {
			if err := uploadToS3(spec.Destination, fileName, content); err != nil {
				return fmt.Errorf("export failure: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(spec.Destination.Directory, 0o755); err != nil {
			return fmt.Errorf("export failure: %w", err)
		}
		path := filepath.Join(spec.Destination.Directory, fileName)
		if err := writeLocalFile(path, content); err != nil {
			return fmt.Errorf("export failure: %w", err)
		}
	}

	return nil
}

func writeLocalFile(path string, content []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(file)

	_, err = file.Write(content)
	return err
}

package reads

import (
	"bufio"
	"context"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"
)

// Format selects the record syntax of read files.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatFASTA Format = "fasta"
	FormatFASTQ Format = "fastq"
)

var ErrUnknownFormat = errors.New("unknown read format")

// ParseFormat accepts "", auto, fasta, fa, fastq and fq.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "fasta", "fa":
		return FormatFASTA, nil
	case "fastq", "fq":
		return FormatFASTQ, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// FileSource streams reads from a list of FASTA/FASTQ files in order,
// opening each file only when the previous one is exhausted.
type FileSource struct {
	ctx    context.Context
	paths  []string
	format Format

	path    string
	closer  io.Closer
	scanner *seqio.Scanner
	read    Read
	err     error
}

// NewFileSource returns a Source over paths. Cancellation of ctx ends the
// stream with ctx.Err().
func NewFileSource(ctx context.Context, paths []string, format Format) *FileSource {
	return &FileSource{ctx: ctx, paths: append([]string(nil), paths...), format: format}
}

func (s *FileSource) Next() bool {
	for s.err == nil {
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}
		if s.scanner == nil {
			if len(s.paths) == 0 {
				return false
			}
			if err := s.openNext(); err != nil {
				s.fail(err)
				return false
			}
		}
		if s.scanner.Next() {
			s.read = s.scanner.Seq()
			return true
		}
		if err := s.scanner.Error(); err != nil {
			s.fail(errors.Wrapf(err, "parse %s", s.path))
			return false
		}
		if err := s.closeCurrent(); err != nil {
			s.fail(err)
			return false
		}
	}
	return false
}

func (s *FileSource) Read() Read { return s.read }
func (s *FileSource) Err() error { return s.err }

// Close releases the currently open file, if any.
func (s *FileSource) Close() error { return s.closeCurrent() }

func (s *FileSource) fail(err error) {
	s.err = err
	s.read = nil
	_ = s.closeCurrent()
}

func (s *FileSource) openNext() error {
	s.path, s.paths = s.paths[0], s.paths[1:]
	rc, err := Open(s.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.path)
	}
	br := bufio.NewReader(rc)
	format := s.format
	if format == FormatAuto || format == "" {
		format = sniff(br)
	}
	var r seqio.Reader
	switch format {
	case FormatFASTQ:
		r = fastq.NewReader(br, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	default:
		r = fasta.NewReader(br, linear.NewSeq("", nil, alphabet.DNA))
	}
	s.closer = rc
	s.scanner = seqio.NewScanner(r)
	return nil
}

func (s *FileSource) closeCurrent() error {
	s.scanner = nil
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return errors.Wrapf(err, "close %s", s.path)
	}
	return nil
}

// sniff looks at the first non-space byte: '@' means FASTQ, anything else
// is parsed as FASTA.
func sniff(br *bufio.Reader) Format {
	for n := 1; n <= 4096; n++ {
		buf, _ := br.Peek(n)
		if len(buf) < n {
			break
		}
		switch buf[n-1] {
		case ' ', '\t', '\r', '\n':
		case '@':
			return FormatFASTQ
		default:
			return FormatFASTA
		}
	}
	return FormatFASTA
}

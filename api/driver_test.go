package api

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/config"
	"github.com/sarchlab/stackvm/core"
	"github.com/sarchlab/stackvm/program"
	"github.com/sarchlab/stackvm/verify"
)

var triangle = []string{
	"# sum of 1..5",
	":main",
	"PUSH 5",
	"CALL >countdown",
	"SUM",
	"POP 'total'",
	"RET",
	"",
	":countdown",
	"# pushes n-1 .. 0 below n, then drops the 0",
	"DUP",
	"PUSH 1",
	"SUB",
	"DUP",
	"BNEZ >countdown",
	"DROP",
	"RET",
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

var _ = Describe("Driver", func() {
	var (
		buf    bytes.Buffer
		driver Driver
	)

	BeforeEach(func() {
		buf.Reset()
		driver = DriverBuilder{}.WithOutput(&buf).Build()
	})

	It("should run a valid program", func() {
		res, err := driver.RunLines([]string{
			":main",
			"PUSH 2",
			"PUSH 5",
			"MUL",
			"POP 'x'",
			"RET",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Outcome).To(Equal(core.Halted))
		Expect(lines(&buf)).To(Equal([]string{
			"POP [x]: 10",
			"Remaining stack elements on finish: TOP -> []",
		}))
	})

	It("should run programs with calls and comments", func() {
		res, err := driver.RunLines(triangle)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Outcome).To(Equal(core.Halted))
		Expect(lines(&buf)).To(Equal([]string{
			"POP [total]: 15",
			"Remaining stack elements on finish: TOP -> []",
		}))
	})

	It("should not execute a program with a syntax error", func() {
		res, err := driver.RunLines([]string{
			":main",
			"PUSH 1",
			"POP",
			"FROB",
			"RET",
		})

		Expect(errors.Is(err, program.ErrUnknownMnemonic)).To(BeTrue())
		Expect(res.Steps).To(BeZero())
		Expect(lines(&buf)).To(HaveLen(1))
		Expect(lines(&buf)[0]).To(HavePrefix("[SYNTAX]"))
		Expect(lines(&buf)[0]).To(HaveSuffix("(Line: 4)"))
		Expect(buf.String()).NotTo(ContainSubstring("POP: 1"))
	})

	It("should print no advisories past the first syntax error", func() {
		_, err := driver.RunLines([]string{
			":main",
			"JMP =4",
			"PUSH x",
			"JMP =2",
			"RET",
		})

		Expect(errors.Is(err, program.ErrInvalidNumber)).To(BeTrue())
		Expect(lines(&buf)).To(HaveLen(2))
		Expect(lines(&buf)[0]).To(Equal(
			"[WARNING] (conditional) jump based on line number! (Line: 2)"))
		Expect(lines(&buf)[1]).To(HavePrefix("[SYNTAX]"))
		Expect(lines(&buf)[1]).To(HaveSuffix("(Line: 3)"))
	})

	It("should report duplicate labels before running", func() {
		_, err := driver.RunLines([]string{":main", "RET", ":main", "RET"})

		Expect(errors.Is(err, program.ErrDuplicateLabel)).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("[SYNTAX]"))
	})

	It("should reject a program without an entry label", func() {
		_, err := driver.RunLines([]string{"PUSH 1", "RET"})

		Expect(errors.Is(err, program.ErrMissingEntry)).To(BeTrue())
	})

	It("should print one advisory per literal jump and still run", func() {
		res, err := driver.RunLines([]string{
			":main",
			"JMP =4",
			"JMP =2",
			"PUSH 1",
			"RET",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Outcome).To(Equal(core.Halted))
		Expect(lines(&buf)).To(Equal([]string{
			"[WARNING] (conditional) jump based on line number! (Line: 2)",
			"[WARNING] (conditional) jump based on line number! (Line: 3)",
			"Remaining stack elements on finish: TOP -> [1]",
		}))
	})

	It("should hide advisories when disabled", func() {
		cfg := config.Default()
		cfg.Advisories = false
		driver = DriverBuilder{}.WithConfig(cfg).WithOutput(&buf).Build()

		_, err := driver.RunLines([]string{":main", "JMP =3", "PUSH 1", "RET"})

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).NotTo(ContainSubstring("[WARNING]"))
	})

	It("should start at the configured entry", func() {
		cfg := config.Default()
		cfg.Entry = "start"
		cfg.Dump = core.DumpNone
		driver = DriverBuilder{}.WithConfig(cfg).WithOutput(&buf).Build()

		res, err := driver.RunLines([]string{":start", "PUSH 3", "PEEK", "RET"})

		Expect(err).NotTo(HaveOccurred())
		Expect(lines(&buf)).To(Equal([]string{"PEEK: 3"}))
		Expect(res.Remaining).To(HaveLen(1))
	})

	It("should return fatal run-time results without an error", func() {
		res, err := driver.RunLines([]string{":main", "PUSH 1", "PUSH 0", "DIV", "RET"})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Outcome).To(Equal(core.Fatal))
		Expect(errors.Is(res.Err, core.ErrDivisionByZero)).To(BeTrue())
		Expect(lines(&buf)).To(Equal([]string{
			"[FATAL] DIV: division by zero (Line: 4)",
			"Remaining stack elements on finish: TOP -> []",
		}))
	})

	It("should run a program file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "prog.svm")
		Expect(os.WriteFile(path,
			[]byte(":main\r\nPUSH 4\r\nSQRT\r\nPOP\r\nRET\r\n"), 0o644)).To(Succeed())

		res, err := driver.RunFile(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Outcome).To(Equal(core.Halted))
		Expect(lines(&buf)[0]).To(Equal("POP: 2"))
	})

	It("should fail on a missing file", func() {
		_, err := driver.RunFile(filepath.Join(GinkgoT().TempDir(), "none.svm"))
		Expect(err).To(HaveOccurred())
	})

	It("should list every issue on Check", func() {
		issues, err := driver.Check([]string{
			":main",
			"PUSH",
			"PUSH abc",
			"JMP =2",
			"BEQ",
			"RET",
		})

		Expect(err).NotTo(HaveOccurred())
		syntax, warnings := verify.Summary(issues)
		Expect(syntax).To(Equal(3))
		Expect(warnings).To(Equal(1))
	})

	Context("on an engine", func() {
		It("should produce the same output as a direct run", func() {
			direct := bytes.Buffer{}
			_, err := DriverBuilder{}.WithOutput(&direct).Build().RunLines(triangle)
			Expect(err).NotTo(HaveOccurred())

			engine := sim.NewSerialEngine()
			res, err := DriverBuilder{}.
				WithOutput(&buf).
				WithEngine(engine).
				WithFreq(1 * sim.GHz).
				Build().
				RunLines(triangle)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Outcome).To(Equal(core.Halted))
			Expect(buf.String()).To(Equal(direct.String()))
		})
	})
})

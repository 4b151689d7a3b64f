package core

import (
	"errors"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/stackvm/program"
)

func dec(s string) *apd.Decimal {
	d, err := program.ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func operandStrings(s *machineState) []string {
	return decimalStrings(s.Operands.Snapshot())
}

var _ = Describe("InstEmulator", func() {
	var (
		mockCtrl *gomock.Controller
		console  *MockConsole
		ie       instEmulator
		s        machineState
	)

	run := func(text string) (bool, error) {
		inst, err := program.Decode(program.Line{Index: 1, Text: text})
		Expect(err).NotTo(HaveOccurred())
		return ie.RunInst(inst, &s)
	}

	push := func(values ...string) {
		for _, v := range values {
			s.Operands.Push(dec(v))
		}
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		console = NewMockConsole(mockCtrl)
		ie = instEmulator{console: console}

		code, err := program.New([]string{
			":main",
			"NOP-LINE",
			"",
			":target",
			"RET",
			"",
		})
		Expect(err).NotTo(HaveOccurred())
		s = machineState{PC: 2, Code: code}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("Stack Instructions", func() {
		It("PUSH should parse and push the literal", func() {
			_, err := run("PUSH -1.50")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"-1.50"}))
		})

		It("PEEK should print the top without removing it", func() {
			push("1", "2")
			console.EXPECT().WriteLine("PEEK: 2")
			_, err := run("PEEK")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Operands.Len()).To(Equal(2))
		})

		It("POP should print a tag and remove the top", func() {
			push("1", "2")
			console.EXPECT().WriteLine("POP [result]: 2")
			_, err := run(`POP "result"`)
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"1"}))
		})

		It("PEEK and POP should print the sentinel on an empty stack", func() {
			gomock.InOrder(
				console.EXPECT().WriteLine("PEEK: no value"),
				console.EXPECT().WriteLine("POP [x]: no value"),
			)
			_, err := run("PEEK")
			Expect(err).NotTo(HaveOccurred())
			_, err = run("POP x")
			Expect(err).NotTo(HaveOccurred())
		})

		It("DUP should duplicate the top", func() {
			push("7")
			_, err := run("DUP")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"7", "7"}))
		})

		It("SWAP should exchange the top two", func() {
			push("1", "2")
			_, err := run("SWAP")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"1", "2"}))
		})

		It("DROP should discard the top silently", func() {
			push("1", "2")
			_, err := run("DROP")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"1"}))
		})

		DescribeTable("underflow",
			func(text string, values ...string) {
				push(values...)
				_, err := run(text)
				Expect(errors.Is(err, ErrStackUnderflow)).To(BeTrue())

				var re *RuntimeError
				Expect(errors.As(err, &re)).To(BeTrue())
				Expect(re.Line).To(Equal(2))
			},
			Entry("DUP on empty", "DUP"),
			Entry("SWAP with one element", "SWAP", "1"),
			Entry("DROP on empty", "DROP"),
			Entry("ADD with one element", "ADD", "1"),
			Entry("SQRT on empty", "SQRT"),
			Entry("BEQ with one element", "BEQ >target", "1"),
			Entry("BEZ on empty", "BEZ >target"),
		)
	})

	Context("Arithmetic Instructions", func() {
		It("ADD should add the top two", func() {
			push("3", "4")
			_, err := run("ADD")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"7"}))
		})

		It("SUB should subtract the top from the one below", func() {
			push("10", "3")
			_, err := run("SUB")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"7"}))
		})

		It("MUL should multiply exactly", func() {
			push("1.5", "1.5")
			_, err := run("MUL")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"2.25"}))
		})

		It("SUM should drain the stack into one value", func() {
			push("1.5", "2", "-0.5", "10")
			_, err := run("SUM")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Operands.Len()).To(Equal(1))
			top, _ := s.Operands.Peek()
			Expect(top.Cmp(dec("13"))).To(Equal(0))
		})

		It("SUM and PROD should push the identity on an empty stack", func() {
			_, err := run("SUM")
			Expect(err).NotTo(HaveOccurred())
			_, err = run("DROP")
			Expect(err).NotTo(HaveOccurred())
			_, err = run("PROD")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"1"}))
		})

		It("PROD should multiply the whole stack", func() {
			push("1", "2", "3", "4")
			_, err := run("PROD")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"24"}))
		})

		DescribeTable("DIV",
			func(dividend, divisor, want string) {
				push(dividend, divisor)
				_, err := run("DIV")
				Expect(err).NotTo(HaveOccurred())
				Expect(operandStrings(&s)).To(Equal([]string{want}))
			},
			Entry("repeating decimal", "10", "3", "3."+strings.Repeat("3", 127)),
			Entry("exact quotient", "10", "4", "2.5"),
			Entry("integral quotient", "10", "2", "5"),
			Entry("ideal exponent", "100", "1", "100"),
			Entry("two thirds rounds half-even", "2", "3", "0."+strings.Repeat("6", 127)+"7"),
		)

		It("DIV should fail on a zero divisor", func() {
			push("1", "0.0")
			_, err := run("DIV")
			Expect(errors.Is(err, ErrDivisionByZero)).To(BeTrue())
		})

		DescribeTable("MOD",
			func(dividend, divisor, want string) {
				push(dividend, divisor)
				_, err := run("MOD")
				Expect(err).NotTo(HaveOccurred())
				Expect(operandStrings(&s)).To(Equal([]string{want}))
			},
			Entry("positive", "17", "5", "2"),
			Entry("truncates toward zero", "-7", "3", "-1"),
			Entry("negative divisor", "7", "-3", "1"),
			Entry("integral with trailing zeros", "10.00", "3", "1"),
		)

		It("MOD should fail on a zero divisor", func() {
			push("7", "0")
			_, err := run("MOD")
			Expect(errors.Is(err, ErrDivisionByZero)).To(BeTrue())
		})

		It("MOD should fail on a fractional operand", func() {
			push("7.5", "2")
			_, err := run("MOD")
			Expect(errors.Is(err, ErrNotInteger)).To(BeTrue())
		})

		It("SQRT should return exact roots without trailing zeros", func() {
			push("16")
			_, err := run("SQRT")
			Expect(err).NotTo(HaveOccurred())
			push("0.25")
			_, err = run("SQRT")
			Expect(err).NotTo(HaveOccurred())
			Expect(operandStrings(&s)).To(Equal([]string{"0.5", "4"}))
		})

		It("SQRT should keep 128 significant digits", func() {
			push("2")
			_, err := run("SQRT")
			Expect(err).NotTo(HaveOccurred())
			root := operandStrings(&s)[0]
			Expect(root).To(HavePrefix("1.41421356237309504880168872420969807856967187537694"))
			Expect(root).To(HaveLen(DivisionPrecision + 1))
		})

		It("SQRT should fail on a negative operand", func() {
			push("-4")
			_, err := run("SQRT")
			Expect(errors.Is(err, ErrNegativeSqrt)).To(BeTrue())
		})
	})

	Context("Control Flow Instructions", func() {
		It("JMP should resolve labels", func() {
			_, err := run("JMP >target")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.PC).To(Equal(3))
		})

		It("JMP should convert literal line numbers to indices", func() {
			_, err := run("JMP =5")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.PC).To(Equal(4))
		})

		It("JMP should fail on an unknown label", func() {
			_, err := run("JMP >nowhere")
			Expect(errors.Is(err, ErrUnknownLabel)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("nowhere"))
			Expect(err.Error()).To(ContainSubstring("(Line: 2)"))
		})

		It("CALL should save the return address", func() {
			_, err := run("CALL >target")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.PC).To(Equal(3))
			Expect(s.Calls.Snapshot()).To(Equal([]int{2}))

			halted, err := run("RET")
			Expect(err).NotTo(HaveOccurred())
			Expect(halted).To(BeFalse())
			Expect(s.PC).To(Equal(2))
		})

		It("RET should halt on an empty call stack", func() {
			halted, err := run("RET")
			Expect(err).NotTo(HaveOccurred())
			Expect(halted).To(BeTrue())
		})

		DescribeTable("conditional branches",
			func(text string, jumps bool, values ...string) {
				push(values...)
				_, err := run(text)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Operands.Len()).To(Equal(0))
				if jumps {
					Expect(s.PC).To(Equal(3))
				} else {
					Expect(s.PC).To(Equal(2))
				}
			},
			Entry("BEQ equal", "BEQ >target", true, "5", "5"),
			Entry("BEQ compares values, not scale", "BEQ >target", true, "2", "2.0"),
			Entry("BEQ unequal", "BEQ >target", false, "5", "6"),
			Entry("BNEQ unequal", "BNEQ >target", true, "5", "6"),
			Entry("BGT left greater", "BGT >target", true, "3", "2"),
			Entry("BGT left smaller", "BGT >target", false, "2", "3"),
			Entry("BGE equal", "BGE >target", true, "2", "2"),
			Entry("BLT left smaller", "BLT >target", true, "2", "3"),
			Entry("BLT left greater", "BLT >target", false, "3", "2"),
			Entry("BLE equal", "BLE >target", true, "-1", "-1.00"),
			Entry("BEZ zero", "BEZ >target", true, "0.000"),
			Entry("BEZ nonzero", "BEZ >target", false, "0.001"),
			Entry("BNEZ nonzero", "BNEZ >target", true, "-3"),
		)
	})

	It("should handle every mnemonic of the ISA", func() {
		console.EXPECT().WriteLine(gomock.Any()).AnyTimes()

		for _, m := range program.DefaultISA().Mnemonics() {
			inst := program.Inst{Mnemonic: m, Line: 2}
			switch m.Arg() {
			case program.ArgDecimal:
				inst.Arg, inst.HasArg = "1", true
			case program.ArgTarget:
				inst.Arg, inst.HasArg = ">target", true
			case program.ArgTag, program.ArgNone:
			}

			s.Operands = Stack[*apd.Decimal]{}
			push("4", "4", "4")
			Expect(func() {
				_, err := ie.RunInst(inst, &s)
				Expect(err).NotTo(HaveOccurred())
			}).NotTo(Panic(), "mnemonic %s", m)
		}
	})
})

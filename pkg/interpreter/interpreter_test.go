package interpreter_test

import (
	"bytes"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/loxlang/golox/pkg/interpreter"
	"github.com/loxlang/golox/pkg/parser"
	"github.com/loxlang/golox/pkg/validator"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

// run parses, validates, and executes source, returning everything the
// program printed.
func run(t *testing.T, source string) (string, error) {
	t.Helper()
	r := require.New(t)

	prog, err := parser.Parse(source)
	r.NoError(err)

	err = validator.Validate(prog)
	r.NoError(err)

	var output bytes.Buffer
	interp, err := interpreter.New(slogt.New(t), interpreter.Config{Stdout: &output})
	r.NoError(err)

	err = interp.Execute(prog)
	return output.String(), err
}

func TestScripts(t *testing.T) {
	dir := os.DirFS("./testdata/")
	testFiles, err := fs.Glob(dir, "*.lox")
	if err != nil {
		t.Fatal(err)
	}

	for _, testFile := range testFiles {
		name := strings.Split(testFile, ".")[0]
		t.Run(name, func(t *testing.T) {
			r := require.New(t)

			testData, err := fs.ReadFile(dir, testFile)
			r.NoError(err)

			parts := bytes.SplitN(testData, []byte("\n---\n"), 2)
			source := string(parts[0])
			expected := strings.TrimSpace(string(parts[1]))

			output, err := run(t, source)
			r.NoError(err)
			r.Equal(expected, strings.TrimSpace(output))
		})
	}
}

func TestMutateAndPrint(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `var x = 5; x = x + 1; print x;`)
	r.NoError(err)
	r.Equal("6\n", output)
}

func TestDivisionByZeroYieldsNaN(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `print 1/0;`)
	r.NoError(err)
	r.Equal("nan\n", output)
}

func TestNegativeZero(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `print -0; print 0;`)
	r.NoError(err)
	r.Equal("-0\n0\n", output)
}

func TestClosureOutlivesEnclosingCall(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
fun outer() {
  var secret = "kept";
  fun inner() {
    return secret;
  }
  return inner;
}
var f = outer();
print f();
`)
	r.NoError(err)
	r.Equal("kept\n", output)
}

func TestGlobalsPersistAcrossExecutes(t *testing.T) {
	r := require.New(t)

	var output bytes.Buffer
	interp, err := interpreter.New(slogt.New(t), interpreter.Config{Stdout: &output})
	r.NoError(err)

	first, err := parser.Parse(`var x = 40;`)
	r.NoError(err)
	r.NoError(validator.Validate(first))
	r.NoError(interp.Execute(first))

	second, err := parser.Parse(`print x + 2;`)
	r.NoError(err)
	r.NoError(validator.Validate(second))
	r.NoError(interp.Execute(second))

	r.Equal("42\n", output.String())
}

func TestUndefinedVariable(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `print missing;`)
	var nameErr interpreter.NameError
	r.ErrorAs(err, &nameErr)
	r.Equal("missing", nameErr.Name)
}

func TestAssignUndefinedVariable(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `missing = 1;`)
	var nameErr interpreter.NameError
	r.ErrorAs(err, &nameErr)
	r.Equal("missing", nameErr.Name)
}

func TestCallNonCallable(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `"not a function"();`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
}

func TestArityMismatch(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
fun f(a, b) {
  return a;
}
f(1);
`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
	r.Equal("expected 2 arguments, got 1", typeErr.Message)
}

func TestConstructorArityWithoutInit(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
class Empty {}
Empty(1, 2);
`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
	r.Equal("expected 0 arguments, got 2", typeErr.Message)
}

func TestInheritedInitSatisfiesConstructorArgs(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
class Base {
  init(v) {
    this.v = v;
  }
}
class Derived < Base {}
print Derived(7).v;
`)
	r.NoError(err)
	r.Equal("7\n", output)
}

func TestInitReturnValueIsIgnored(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
class C {
  init() {
    this.v = 1;
    return;
  }
}
print C();
`)
	r.NoError(err)
	r.Equal("C instance\n", output)
}

func TestAddRejectsBooleans(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `true + true;`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
	r.Equal("Operands must be two numbers or two strings.", typeErr.Message)
}

func TestAddRejectsMixedKinds(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `1 + "one";`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
}

func TestComparisonRequiresNumbers(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `"a" < "b";`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
	r.Equal("Operands must be numbers.", typeErr.Message)
}

func TestNegateRequiresNumber(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `-"x";`)
	var typeErr interpreter.TypeError
	r.ErrorAs(err, &typeErr)
	r.Equal("Operand must be a number.", typeErr.Message)
}

func TestUnknownAttribute(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
class Empty {}
Empty().missing;
`)
	var attrErr interpreter.AttributeError
	r.ErrorAs(err, &attrErr)
	r.Equal("Empty instance", attrErr.Object)
	r.Equal("missing", attrErr.Name)
}

func TestFieldWriteOnClassRejected(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
class Empty {}
Empty.x = 1;
`)
	var runtimeErr interpreter.RuntimeError
	r.ErrorAs(err, &runtimeErr)
	r.Equal("Only instances have fields.", runtimeErr.Message)
}

func TestFieldWriteOnFunctionRejected(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
fun f() {}
f.x = 1;
`)
	var runtimeErr interpreter.RuntimeError
	r.ErrorAs(err, &runtimeErr)
	r.Equal("Only instances have fields.", runtimeErr.Message)
}

func TestSuperclassMustBeClass(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
var notAClass = 1;
class B < notAClass {}
`)
	var runtimeErr interpreter.RuntimeError
	r.ErrorAs(err, &runtimeErr)
	r.Equal("Superclass must be a class.", runtimeErr.Message)
}

func TestSuperclassEvaluationErrorPropagates(t *testing.T) {
	r := require.New(t)

	// An unbound superclass name is a name error, not a silent "no
	// superclass" and not the not-a-class error.
	_, err := run(t, `class B < missing {}`)
	var nameErr interpreter.NameError
	r.ErrorAs(err, &nameErr)
	r.Equal("missing", nameErr.Name)
}

func TestSuperMethodMissing(t *testing.T) {
	r := require.New(t)

	_, err := run(t, `
class A {}
class B < A {
  f() {
    return super.g();
  }
}
B().f();
`)
	var attrErr interpreter.AttributeError
	r.ErrorAs(err, &attrErr)
	r.Equal("A", attrErr.Object)
	r.Equal("g", attrErr.Name)
}

func TestSuperResolvesBaseNotDynamicClass(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
class A {
  name() {
    return "A";
  }
}
class B < A {
  name() {
    return "B";
  }
  parentName() {
    return super.name();
  }
}
class C < B {}
print C().parentName();
print C().name();
`)
	r.NoError(err)
	r.Equal("A\nB\n", output)
}

func TestWhileLoopDepthIndependent(t *testing.T) {
	r := require.New(t)

	// A large iteration count must not grow the native stack.
	output, err := run(t, `
var i = 0;
var sum = 0;
while (i < 100000) {
  sum = sum + 1;
  i = i + 1;
}
print sum;
`)
	r.NoError(err)
	r.Equal("100000\n", output)
}

func TestReturnUnwindsThroughNestedBlocks(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
fun find() {
  var i = 0;
  while (true) {
    if (i == 3) {
      return i;
    }
    i = i + 1;
  }
}
print find();
`)
	r.NoError(err)
	r.Equal("3\n", output)
}

func TestFunctionWithoutReturnYieldsNil(t *testing.T) {
	r := require.New(t)

	output, err := run(t, `
fun f() {}
print f();
`)
	r.NoError(err)
	r.Equal("nil\n", output)
}

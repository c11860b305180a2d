package reconcile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/logging"
	"github.com/phylogeno/subgenome/pkg/partition"
	"github.com/phylogeno/subgenome/pkg/search"
)

// Tool wraps one reconciliation jar invocation style. Only Infer_ST_MDC
// has been exercised; other inference commands share the instruction
// syntax and should work unchanged.
type Tool struct {
	javaPath    string
	javaOptions []string
	jarPath     string
	command     string
	workDir     string
	keepFiles   bool
	runner      CommandRunner
	logger      *logging.Logger
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithJava overrides the java binary path.
func WithJava(path string) ToolOption {
	return func(t *Tool) { t.javaPath = path }
}

// WithJavaOptions replaces the JVM flags.
func WithJavaOptions(opts ...string) ToolOption {
	return func(t *Tool) { t.javaOptions = opts }
}

// WithCommand overrides the inference command.
func WithCommand(command string) ToolOption {
	return func(t *Tool) { t.command = command }
}

// WithWorkDir places job files in a specific directory.
func WithWorkDir(dir string) ToolOption {
	return func(t *Tool) { t.workDir = dir }
}

// WithKeepFiles leaves job files on disk for debugging.
func WithKeepFiles() ToolOption {
	return func(t *Tool) { t.keepFiles = true }
}

// WithRunner substitutes the subprocess runner.
func WithRunner(r CommandRunner) ToolOption {
	return func(t *Tool) { t.runner = r }
}

// WithToolLogger overrides the global logger.
func WithToolLogger(l *logging.Logger) ToolOption {
	return func(t *Tool) { t.logger = l }
}

// NewTool builds a Tool for the given jar.
func NewTool(jarPath string, opts ...ToolOption) (*Tool, error) {
	if jarPath == "" {
		return nil, errors.New(errors.InvalidConfig, "reconciliation jar path is required")
	}

	t := &Tool{
		javaPath:    "java",
		javaOptions: []string{"-Xmx1200m"},
		jarPath:     jarPath,
		command:     "Infer_ST_MDC",
		workDir:     os.TempDir(),
		runner:      ExecRunner{},
		logger:      logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Command returns the configured inference command.
func (t *Tool) Command() string {
	return t.command
}

// Infer writes a single-inference NEXUS job, runs the jar on it, and
// parses the result. The job file gets a unique name so parallel
// evaluations never collide.
func (t *Tool) Infer(ctx context.Context, trees []string, instruction string) (*Result, error) {
	if err := errors.CheckContext(ctx, "reconciliation"); err != nil {
		return nil, err
	}

	jobPath := filepath.Join(t.workDir, uuid.New().String()+".nex")
	f, err := os.Create(jobPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.OracleFailed, "creating nexus job file")
	}
	if !t.keepFiles {
		defer os.Remove(jobPath)
	}

	if err := WriteNexus(f, trees, instruction); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, errors.OracleFailed, "writing nexus job file")
	}

	args := append(append([]string{}, t.javaOptions...), "-jar", t.jarPath, jobPath)
	out, err := t.runner.Run(ctx, t.javaPath, args...)
	if err != nil {
		return nil, err
	}

	results, err := ParseOutput(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.WithFields(
			errors.New(errors.OracleFailed, "expected one inference result"),
			errors.Fields{"results": len(results)},
		)
	}
	t.logger.Debug(ctx, "reconciliation scored %d extra lineages", results[0].ExtraLineages)
	return &results[0], nil
}

// Oracle scores partition states by the extra-lineage count of the species
// tree inferred under the state's allele mapping. Lower is better; zero
// means the gene trees need no extra lineages at all.
type Oracle struct {
	tool           *Tool
	problem        *partition.Problem
	trees          []string
	treeIDs        string
	diploidMapping string
}

var _ search.Oracle[*partition.State] = (*Oracle)(nil)

// NewOracle binds a tool to a partition problem and its gene trees. The
// diploid mapping covers the taxa that need no optimization and is shared
// by every evaluation.
func NewOracle(tool *Tool, problem *partition.Problem, trees []string, diploidMapping string) (*Oracle, error) {
	if len(trees) == 0 {
		return nil, errors.New(errors.InvalidInput, "oracle needs at least one gene tree")
	}
	return &Oracle{
		tool:           tool,
		problem:        problem,
		trees:          trees,
		treeIDs:        TreeIDs(len(trees)),
		diploidMapping: diploidMapping,
	}, nil
}

// Evaluate runs one reconciliation for the state's allele mapping.
func (o *Oracle) Evaluate(ctx context.Context, s *partition.State) (float64, error) {
	mapping, err := partition.MappingString(o.problem.Taxon, o.problem.Partition(s))
	if err != nil {
		return 0, err
	}
	instruction, err := Instruction(o.tool.Command(), o.treeIDs, o.diploidMapping, mapping)
	if err != nil {
		return 0, err
	}
	res, err := o.tool.Infer(ctx, o.trees, instruction)
	if err != nil {
		return 0, err
	}
	return float64(res.ExtraLineages), nil
}

package bench

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/benz9527/xstable/lib/infra"
)

const (
	// MaxWorkloadFileSize is the largest workload file LoadWorkloads accepts.
	MaxWorkloadFileSize = 1 << 20
	MaxTrackedIterators = 1024
)

var (
	ErrWorkloadInvalid = infra.NewErrorStack("[svbench] invalid workload")
)

//go:embed workloads.yaml
var defaultWorkloadsYAML []byte

type OpKind string

const (
	OpInsert   OpKind = "insert"
	OpErase    OpKind = "erase"
	OpPushBack OpKind = "pushBack"
	OpPopBack  OpKind = "popBack"
	OpResize   OpKind = "resize"
	OpSwap     OpKind = "swap"
	OpAssign   OpKind = "assign"
)

// OpMix holds the relative weight of every operation kind.
type OpMix struct {
	Insert   int `yaml:"insert"`
	Erase    int `yaml:"erase"`
	PushBack int `yaml:"pushBack"`
	PopBack  int `yaml:"popBack"`
	Resize   int `yaml:"resize"`
	Swap     int `yaml:"swap"`
	Assign   int `yaml:"assign"`
}

func (mix OpMix) weights() []lo.Tuple2[OpKind, int] {
	return []lo.Tuple2[OpKind, int]{
		lo.T2(OpInsert, mix.Insert),
		lo.T2(OpErase, mix.Erase),
		lo.T2(OpPushBack, mix.PushBack),
		lo.T2(OpPopBack, mix.PopBack),
		lo.T2(OpResize, mix.Resize),
		lo.T2(OpSwap, mix.Swap),
		lo.T2(OpAssign, mix.Assign),
	}
}

func (mix OpMix) total() int {
	return lo.SumBy(mix.weights(), func(weight lo.Tuple2[OpKind, int]) int {
		return weight.B
	})
}

// pick maps r in [0, total) onto an operation kind.
func (mix OpMix) pick(r int) OpKind {
	for _, w := range mix.weights() {
		if r < w.B {
			return w.A
		}
		r -= w.B
	}
	return OpPushBack
}

type Workload struct {
	Name        string `yaml:"name"`
	InitialSize int    `yaml:"initialSize"`
	Ops         int    `yaml:"ops"`
	Seed        int64  `yaml:"seed"`
	MaxSize     int    `yaml:"maxSize"`
	ChunkSize   int    `yaml:"chunkSize"`
	Tracked     int    `yaml:"tracked"`
	Mix         OpMix  `yaml:"mix"`
}

func (w Workload) validate() error {
	var merr error
	if len(w.Name) <= 0 {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid, "empty name"))
	}
	if w.InitialSize < 0 || w.Ops < 0 || w.MaxSize < 0 || w.ChunkSize < 0 || w.Tracked < 0 {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("workload %q has a negative size", w.Name)))
	}
	if w.Tracked > MaxTrackedIterators {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("workload %q tracks more than %d iterators", w.Name, MaxTrackedIterators)))
	}
	if w.MaxSize > 0 && w.InitialSize > w.MaxSize {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("workload %q initial size exceeds max size", w.Name)))
	}
	negative := lo.Filter(w.Mix.weights(), func(weight lo.Tuple2[OpKind, int], _ int) bool {
		return weight.B < 0
	})
	if len(negative) > 0 || w.Mix.total() <= 0 {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("workload %q has an invalid op mix", w.Name)))
	}
	return merr
}

type workloadFile struct {
	Workloads []Workload `yaml:"workloads"`
}

// ParseWorkloads decodes and validates a YAML workload document.
func ParseWorkloads(data []byte) ([]Workload, error) {
	file := workloadFile{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[svbench] unable to decode workloads")
	}
	if len(file.Workloads) <= 0 {
		return nil, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid, "no workloads")
	}
	var merr error
	for _, w := range file.Workloads {
		merr = multierr.Append(merr, w.validate())
	}
	dup := lo.FindDuplicatesBy(file.Workloads, func(w Workload) string {
		return w.Name
	})
	for _, w := range dup {
		merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("duplicate workload name %q", w.Name)))
	}
	if merr != nil {
		return nil, merr
	}
	return file.Workloads, nil
}

// LoadWorkloads reads the workload file at path.
// An empty path loads the embedded defaults.
func LoadWorkloads(path string) ([]Workload, error) {
	if len(path) <= 0 {
		return ParseWorkloads(defaultWorkloadsYAML)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	if info.Size() > MaxWorkloadFileSize {
		return nil, infra.WrapErrorStackWithMessage(ErrWorkloadInvalid,
			fmt.Sprintf("workload file %s is larger than %d bytes", path, MaxWorkloadFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return ParseWorkloads(data)
}

package report

import (
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/pavanmanishd/cowbench/bench"
)

// Prom collects results into gauges and writes them in the Prometheus
// text exposition format on Flush, ready for a textfile collector or a
// push gateway.
type Prom struct {
	w        io.Writer
	reg      *prometheus.Registry
	elapsed  *prometheus.GaugeVec
	copies   *prometheus.GaugeVec
	allocs   *prometheus.GaugeVec
	frees    *prometheus.GaugeVec
	checksum *prometheus.GaugeVec
}

var promLabels = []string{"variant", "workload", "run", "workers"}

func newGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cowbench",
		Name:      name,
		Help:      help,
	}, promLabels)
}

// NewProm returns a Prometheus sink with its own registry.
func NewProm(w io.Writer) *Prom {
	p := &Prom{
		w:        w,
		reg:      prometheus.NewRegistry(),
		elapsed:  newGauge("elapsed_seconds", "Wall-clock time of one timed run."),
		copies:   newGauge("copies", "Copy constructions during one timed run."),
		allocs:   newGauge("allocs", "Storage allocations during one timed run."),
		frees:    newGauge("frees", "Storage releases during one timed run."),
		checksum: newGauge("checksum", "Sum of the bytes read during one timed run."),
	}
	p.reg.MustRegister(p.elapsed, p.copies, p.allocs, p.frees, p.checksum)
	return p
}

func (p *Prom) Write(r bench.Result) error {
	labels := prometheus.Labels{
		"variant":  r.Variant,
		"workload": r.Workload,
		"run":      strconv.Itoa(r.Run),
		"workers":  strconv.Itoa(r.Workers),
	}
	p.elapsed.With(labels).Set(r.Elapsed.Seconds())
	p.copies.With(labels).Set(float64(r.Copies))
	p.allocs.With(labels).Set(float64(r.Allocs))
	p.frees.With(labels).Set(float64(r.Frees))
	p.checksum.With(labels).Set(float64(r.Checksum))
	return nil
}

func (p *Prom) Flush() error {
	mfs, err := p.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(p.w, mf); err != nil {
			return err
		}
	}
	return nil
}

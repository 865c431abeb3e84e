package main

import (
	"fmt"
	"runtime"

	"github.com/ChizhovVadim/counteruci/pkg/engine"
	"github.com/ChizhovVadim/counteruci/pkg/uci"
)

const tuneRange = 100000

// newOptions lists the engine options in the order they are advertised.
// info receives messages for the controller such as the tablebase scan.
func newOptions(eng *engine.Engine, syzygyPath *string, info func(string)) []uci.Option {
	var c = &eng.Config
	var spin = func(name string, value *int) uci.Option {
		return &uci.IntOption{Name: name, Min: -tuneRange, Max: tuneRange, Value: value}
	}
	var divisor = func(name string, value *int) uci.Option {
		return &uci.IntOption{Name: name, Min: 1, Max: tuneRange, Value: value}
	}
	var scaled = func(name string, value *float64) uci.Option {
		return &uci.FloatOption{Name: name, Min: -tuneRange, Max: tuneRange, Value: value}
	}
	return []uci.Option{
		&uci.IntOption{Name: "Hash", Min: 1, Max: engine.MaxHash, Value: &eng.Hash},
		&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Threads},
		&uci.StringOption{Name: "SyzygyPath", Value: syzygyPath, OnChange: func(value string) error {
			var largest, err = eng.SetTablebasePath(value)
			if err != nil {
				return err
			}
			if value != "" {
				info(fmt.Sprintf("Syzygy tablebases with up to %v pieces", largest))
			}
			return nil
		}},
		&uci.BoolOption{Name: "NoobBook", Value: &c.NoobBook},
		&uci.IntOption{Name: "NoobBookLimit", Min: 0, Max: 1000, Value: &c.NoobBookLimit},
		&uci.BoolOption{Name: "OnlineSyzygy", Value: &c.OnlineSyzygy},

		scaled("LMRNoisyBase", &c.LMRNoisyBase),
		scaled("LMRNoisyDiv", &c.LMRNoisyDiv),
		scaled("LMRQuietBase", &c.LMRQuietBase),
		scaled("LMRQuietDiv", &c.LMRQuietDiv),
		divisor("LMRHist", &c.LMRHist),

		spin("IIRDepth", &c.IIRDepth),
		spin("RFPDepth", &c.RFPDepth),
		spin("RFPBase", &c.RFPBase),
		spin("LMPImp", &c.LMPImp),
		spin("LMPNonImp", &c.LMPNonImp),
		spin("HistPruneDepth", &c.HistPruneDepth),
		spin("HistPrune", &c.HistPrune),
		spin("QSFutility", &c.QSFutility),

		spin("Aspi", &c.Aspi),
		divisor("AspiScoreDiv", &c.AspiScoreDiv),

		divisor("HistQDiv", &c.HistQDiv),
		spin("HistBonusMax", &c.HistBonusMax),
		spin("HistBonusBase", &c.HistBonusBase),
		spin("HistBonusDepth", &c.HistBonusDepth),
		spin("HistMalusMax", &c.HistMalusMax),
		spin("HistMalusBase", &c.HistMalusBase),
		spin("HistMalusDepth", &c.HistMalusDepth),

		spin("Tempo", &c.Tempo),
	}
}

package engine

import (
	"math"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

// Config holds the search and evaluation tunables. It is written only
// between searches and read by all search threads.
type Config struct {
	NoobBook      bool
	NoobBookLimit int
	OnlineSyzygy  bool

	LMRNoisyBase float64
	LMRNoisyDiv  float64
	LMRQuietBase float64
	LMRQuietDiv  float64
	LMRHist      int

	IIRDepth       int
	RFPDepth       int
	RFPBase        int
	LMPImp         int
	LMPNonImp      int
	HistPruneDepth int
	HistPrune      int
	QSFutility     int

	Aspi         int
	AspiScoreDiv int

	HistQDiv       int
	HistBonusMax   int
	HistBonusBase  int
	HistBonusDepth int
	HistMalusMax   int
	HistMalusBase  int
	HistMalusDepth int

	Tempo int
}

func NewConfig() Config {
	return Config{
		LMRNoisyBase: 0.20,
		LMRNoisyDiv:  3.35,
		LMRQuietBase: 1.35,
		LMRQuietDiv:  2.75,
		LMRHist:      8192,

		IIRDepth:       4,
		RFPDepth:       7,
		RFPBase:        75,
		LMPImp:         100,
		LMPNonImp:      50,
		HistPruneDepth: 3,
		HistPrune:      4000,
		QSFutility:     60,

		Aspi:         12,
		AspiScoreDiv: 10000,

		HistQDiv:       16384,
		HistBonusMax:   1600,
		HistBonusBase:  100,
		HistBonusDepth: 200,
		HistMalusMax:   1600,
		HistMalusBase:  100,
		HistMalusDepth: 200,

		Tempo: 15,
	}
}

type reductions [2][64][64]int

func (r *reductions) init(c *Config) {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			var ll = math.Log(float64(d)) * math.Log(float64(m))
			r[0][d][m] = int(c.LMRNoisyBase + ll/math.Max(c.LMRNoisyDiv, 0.01))
			r[1][d][m] = int(c.LMRQuietBase + ll/math.Max(c.LMRQuietDiv, 0.01))
		}
	}
}

func (r *reductions) get(quiet bool, depth, moveCount int) int {
	var i = 0
	if quiet {
		i = 1
	}
	return r[i][common.Min(depth, 63)][common.Min(moveCount, 63)]
}

func (c *Config) historyBonus(depth int) int {
	return common.Max(0, common.Min(c.HistBonusMax, c.HistBonusDepth*depth-c.HistBonusBase))
}

func (c *Config) historyMalus(depth int) int {
	return common.Max(0, common.Min(c.HistMalusMax, c.HistMalusDepth*depth-c.HistMalusBase))
}

func (c *Config) lmpLimit(depth int, improving bool) int {
	var scale = c.LMPNonImp
	if improving {
		scale = c.LMPImp
	}
	return (3 + depth*depth) * scale / 100
}

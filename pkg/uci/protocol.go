package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams common.SearchParams) common.SearchInfo
}

// Evaluator is implemented by engines that can print a static evaluation.
type Evaluator interface {
	Evaluate(p *common.Position) int
}

const multiPVMax = 256

type Protocol struct {
	name     string
	author   string
	version  string
	engine   Engine
	options  []Option
	logger   zerolog.Logger
	out      *output
	position common.Position
	limits   common.SearchLimits
	chess960 bool
	search   *searchController
	handlers map[string]func(line string) error
}

// New creates the protocol. MultiPV and UCI_Chess960 are owned by the
// protocol and added after the engine options.
func New(logger zerolog.Logger, name, author, version string, engine Engine, options []Option, w io.Writer) *Protocol {
	var initPosition, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		panic(err)
	}
	var uci = &Protocol{
		name:     name,
		author:   author,
		version:  version,
		engine:   engine,
		logger:   logger,
		out:      newOutput(w),
		position: initPosition,
		limits:   common.SearchLimits{MultiPV: 1},
		search:   newSearchController(),
	}
	uci.options = append(options,
		&IntOption{Name: "MultiPV", Min: 1, Max: multiPVMax, Value: &uci.limits.MultiPV},
		&BoolOption{Name: "UCI_Chess960", Value: &uci.chess960},
	)
	uci.handlers = map[string]func(line string) error{
		"uci":        uci.uciCommand,
		"isready":    uci.isReadyCommand,
		"ucinewgame": uci.uciNewGameCommand,
		"position":   uci.positionCommand,
		"setoption":  uci.setOptionCommand,
		"go":         uci.goCommand,
		"stop":       uci.stopCommand,
	}
	return uci
}

// EnableDevCommands adds the eval, print and perft commands.
func (uci *Protocol) EnableDevCommands() {
	uci.handlers["eval"] = uci.evalCommand
	uci.handlers["print"] = uci.printCommand
	uci.handlers["perft"] = uci.perftCommand
}

// Run reads commands from r until quit, end of input or ctx is done. A
// running search is stopped before Run returns.
func (uci *Protocol) Run(ctx context.Context, r io.Reader) error {
	var commands = make(chan string)
	var readErr = make(chan error, 1)

	go func() {
		defer close(commands)
		var scanner = bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case commands <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	defer uci.search.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case commandLine, ok := <-commands:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if uci.Handle(commandLine) {
				return nil
			}
		}
	}
}

// Handle executes one command line and reports whether it was quit.
// Unknown commands are ignored. Command errors are reported with info
// string and never end the loop.
func (uci *Protocol) Handle(commandLine string) (quit bool) {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return false
	}
	var commandName = fields[0]
	if commandName == "quit" {
		uci.search.Stop()
		return true
	}
	var h, ok = uci.handlers[commandName]
	if !ok {
		uci.logger.Debug().Str("command", commandLine).Msg("unknown command")
		return false
	}
	if err := h(commandLine); err != nil {
		uci.logger.Warn().Err(err).Str("command", commandName).Msg("command failed")
		if errors.Is(err, ErrNoSuchOption) {
			uci.out.InfoString("No such option.")
		} else {
			uci.out.InfoString(err.Error())
		}
	}
	return false
}

// InfoString writes an info string line. It is safe to call from option
// change hooks and from the search goroutine.
func (uci *Protocol) InfoString(s string) {
	uci.out.InfoString(s)
}

func (uci *Protocol) uciCommand(line string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id name %s %s\n", uci.name, uci.version)
	fmt.Fprintf(&sb, "id author %s\n", uci.author)
	for _, option := range uci.options {
		sb.WriteString(option.UciString())
		sb.WriteString("\n")
	}
	sb.WriteString("uciok\n")
	uci.out.WriteString(sb.String())
	return nil
}

// isReadyCommand applies pending Hash and Threads changes when idle. While
// a search runs it only answers.
func (uci *Protocol) isReadyCommand(line string) error {
	if !uci.search.Running() {
		uci.engine.Prepare()
	}
	uci.out.Println("readyok")
	return nil
}

func (uci *Protocol) uciNewGameCommand(line string) error {
	if uci.search.Running() {
		return ErrSearchRunning
	}
	uci.engine.Clear()
	return nil
}

func (uci *Protocol) positionCommand(line string) error {
	if uci.search.Running() {
		return ErrSearchRunning
	}
	var p, err = ParsePosition(line)
	if err != nil {
		return err
	}
	uci.position = p
	return nil
}

func (uci *Protocol) setOptionCommand(line string) error {
	if uci.search.Running() {
		return ErrSearchRunning
	}
	var name, value, err = parseSetOption(line)
	if err != nil {
		return err
	}
	var option = findOption(uci.options, name)
	if option == nil {
		return fmt.Errorf("%w: %v", ErrNoSuchOption, name)
	}
	if err := option.Set(value); err != nil {
		return err
	}
	uci.logger.Debug().Str("name", option.UciName()).Str("value", value).Msg("option set")
	return nil
}

func (uci *Protocol) goCommand(line string) error {
	if uci.search.Running() {
		return ErrSearchRunning
	}
	var limits = uci.limits
	if err := ParseTimeControl(&limits, line, &uci.position); err != nil {
		return err
	}
	uci.limits = limits
	uci.engine.Prepare()

	var position = uci.position
	var chess960 = uci.chess960
	var multiPV = limits.MultiPV
	var searchParams = common.SearchParams{
		Position: position,
		Limits:   limits,
		Progress: func(si common.SearchInfo) {
			uci.out.WriteString(formatThinking(&si, &position, chess960, multiPV))
		},
	}
	return uci.search.Start(func(ctx context.Context) {
		var si = uci.engine.Search(ctx, searchParams)
		if limits.Infinite {
			// bestmove only after stop
			<-ctx.Done()
		}
		uci.out.WriteString(formatConclusion(&si, &position, chess960))
	})
}

func (uci *Protocol) stopCommand(line string) error {
	uci.search.Stop()
	return nil
}

func (uci *Protocol) evalCommand(line string) error {
	var evaluator, ok = uci.engine.(Evaluator)
	if !ok {
		return errors.New("eval is not supported by the engine")
	}
	uci.out.Printf("eval %v\n", evaluator.Evaluate(&uci.position))
	return nil
}

func (uci *Protocol) printCommand(line string) error {
	uci.out.Println(uci.position.String())
	return nil
}

func (uci *Protocol) perftCommand(line string) error {
	var fields = strings.Fields(line)
	var depth = 5
	if len(fields) > 1 {
		var err error
		depth, err = strconv.Atoi(fields[1])
		if err != nil || depth < 1 {
			return fmt.Errorf("perft: bad depth %v", fields[1])
		}
	}
	var start = time.Now()
	var position = uci.position
	var entries = common.Divide(&position, depth)
	var sb strings.Builder
	var total uint64
	for _, entry := range entries {
		fmt.Fprintf(&sb, "%v: %v\n", position.MoveToString(entry.Move, uci.chess960), entry.Nodes)
		total += entry.Nodes
	}
	var elapsed = time.Since(start)
	fmt.Fprintf(&sb, "\nNodes: %v\nTime: %v\nNPS: %v\n",
		total, elapsed.Milliseconds(), total*1000/uint64(elapsed.Milliseconds()+1))
	uci.out.WriteString(sb.String())
	return nil
}

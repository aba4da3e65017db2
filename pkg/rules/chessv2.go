package rules

import (
	"github.com/corentings/chess/v2"

	"github.com/pvoicu/chessroom/internal/color"
)

// ChessOracle implements Oracle on top of corentings/chess.
type ChessOracle struct{}

// NewChessOracle returns the chess-backed oracle.
func NewChessOracle() *ChessOracle {
	return &ChessOracle{}
}

// gamePosition wraps the library game. The full game is kept, not just the
// current board, so repetition counting and PGN rendering keep working.
type gamePosition struct {
	game *chess.Game
}

func (p *gamePosition) FEN() string {
	return p.game.FEN()
}

func (p *gamePosition) PGN() string {
	return p.game.String()
}

func (o *ChessOracle) NewPosition() Position {
	return &gamePosition{game: chess.NewGame()}
}

func (o *ChessOracle) CurrentTurn(p Position) color.Color {
	gp := p.(*gamePosition)
	if gp.game.Position().Turn() == chess.White {
		return color.White
	}
	return color.Black
}

// ApplyMove pushes the move in coordinate notation. A promotion square with
// no piece named defaults to a queen.
func (o *ChessOracle) ApplyMove(p Position, req MoveRequest) (*Accepted, error) {
	gp, ok := p.(*gamePosition)
	if !ok {
		return nil, ErrIllegalMove
	}

	acc, err := o.push(gp, req.From+req.To+req.Promotion)
	if err != nil && req.Promotion == "" {
		if queened, qerr := o.push(gp, req.From+req.To+"q"); qerr == nil {
			return queened, nil
		}
	}

	return acc, err
}

func (o *ChessOracle) push(gp *gamePosition, uci string) (acc *Accepted, err error) {
	// The library panics instead of erroring on some malformed coordinate
	// strings; treat those as illegal moves too.
	defer func() {
		if recover() != nil {
			acc, err = nil, ErrIllegalMove
		}
	}()

	pre := gp.game.Position()

	move, err := chess.UCINotation{}.Decode(pre, uci)
	if err != nil {
		return nil, ErrIllegalMove
	}

	// Decode does not check legality, and an illegal move's SAN form can
	// alias a different legal move, so confirm the move is valid first.
	legal := false
	for _, vm := range pre.ValidMoves() {
		if vm.S1() == move.S1() && vm.S2() == move.S2() && vm.Promo() == move.Promo() {
			legal = true
			break
		}
	}
	if !legal {
		return nil, ErrIllegalMove
	}

	// PushMove parses algebraic notation, so hand it the SAN form of the
	// decoded move rather than the raw coordinate string.
	san := chess.AlgebraicNotation{}.Encode(pre, move)

	if err := gp.game.PushMove(san, nil); err != nil {
		return nil, ErrIllegalMove
	}

	// The library only auto-draws at the fivefold mark; claim the
	// threefold draw on the players' behalf as soon as it is available.
	if gp.game.Outcome() == chess.NoOutcome {
		for _, method := range gp.game.EligibleDraws() {
			if method == chess.ThreefoldRepetition {
				_ = gp.game.Draw(method)
				break
			}
		}
	}

	return &Accepted{Position: gp, SAN: san}, nil
}

func (o *ChessOracle) IsGameOver(p Position) bool {
	return p.(*gamePosition).game.Outcome() != chess.NoOutcome
}

func (o *ChessOracle) IsCheckmate(p Position) bool {
	return p.(*gamePosition).game.Method() == chess.Checkmate
}

func (o *ChessOracle) IsStalemate(p Position) bool {
	return p.(*gamePosition).game.Method() == chess.Stalemate
}

func (o *ChessOracle) IsThreefoldRepetition(p Position) bool {
	method := p.(*gamePosition).game.Method()
	return method == chess.ThreefoldRepetition || method == chess.FivefoldRepetition
}

func (o *ChessOracle) IsInsufficientMaterial(p Position) bool {
	return p.(*gamePosition).game.Method() == chess.InsufficientMaterial
}

package vehicle

// Piece is the kind of road piece reported in position updates.
type Piece int

const (
	PieceUnknown Piece = iota
	PieceStraight
	PieceCurve
	PieceStartFinish
	PiecePreFinish
	PiecePowerup
	PieceIntersection
)

var pieceNames = [...]string{
	PieceUnknown:      "Unknown",
	PieceStraight:     "Straight",
	PieceCurve:        "Curve",
	PieceStartFinish:  "Start/Finish",
	PiecePreFinish:    "Pre-Finish Line",
	PiecePowerup:      "FnF Powerup",
	PieceIntersection: "Intersection",
}

func (p Piece) String() string {
	if p < 0 || int(p) >= len(pieceNames) {
		return pieceNames[PieceUnknown]
	}
	return pieceNames[p]
}

// PieceKind maps a road piece id to its kind.
func PieceKind(roadPieceID uint8) Piece {
	switch roadPieceID {
	case 36, 39, 40, 51:
		return PieceStraight
	case 17, 18, 20, 23:
		return PieceCurve
	case 33:
		return PieceStartFinish
	case 34:
		return PiecePreFinish
	case 57:
		return PiecePowerup
	case 10:
		return PieceIntersection
	default:
		return PieceUnknown
	}
}

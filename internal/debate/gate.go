package debate

import (
	"errors"

	"debate_arena/internal/models"
)

// Reason 拒絕發言的原因代碼
type Reason string

const (
	ReasonNone                      Reason = ""
	ReasonNotParticipant            Reason = "NOT_PARTICIPANT"
	ReasonSeatsNotFull              Reason = "SEATS_NOT_FULL"
	ReasonRoundExhausted            Reason = "ROUND_EXHAUSTED"
	ReasonAlreadySubmittedThisRound Reason = "ALREADY_SUBMITTED_THIS_ROUND"
)

var (
	ErrNotParticipant   = errors.New("not a debater in this room")
	ErrSeatsNotFull     = errors.New("waiting for all debater seats to fill")
	ErrRoundExhausted   = errors.New("all rounds are finished")
	ErrAlreadySubmitted = errors.New("already submitted a turn this round")
)

// Err 將原因代碼轉為對應的 sentinel error
func (r Reason) Err() error {
	switch r {
	case ReasonNotParticipant:
		return ErrNotParticipant
	case ReasonSeatsNotFull:
		return ErrSeatsNotFull
	case ReasonRoundExhausted:
		return ErrRoundExhausted
	case ReasonAlreadySubmittedThisRound:
		return ErrAlreadySubmitted
	default:
		return nil
	}
}

// GateInput 判斷發言資格所需的資料
type GateInput struct {
	Participants []models.Participant
	UserID       uint
	CurrentRound int
	MaxRounds    int
	Turns        []models.Turn
	SeatCount    int // 需坐滿的辯手席位，個人賽 2，團體賽 4
}

// Verdict 發言資格判斷結果
type Verdict struct {
	CanSubmit     bool
	Reason        Reason
	ParticipantID uint // 目前用戶的辯手 participant ID，非辯手時為 0
}

// Err 不允許發言時回傳對應錯誤
func (v Verdict) Err() error {
	if v.CanSubmit {
		return nil
	}
	return v.Reason.Err()
}

// CheckSubmission 依序檢查規則，第一條不通過的規則決定拒絕原因
func CheckSubmission(in GateInput) Verdict {
	var self *models.Participant
	debaters := 0
	for i := range in.Participants {
		p := &in.Participants[i]
		if !p.IsDebater() {
			continue
		}
		debaters++
		if p.UserID == in.UserID && self == nil {
			self = p
		}
	}

	if self == nil {
		return Verdict{Reason: ReasonNotParticipant}
	}

	seats := in.SeatCount
	if seats <= 0 {
		seats = DefaultDebaterCount
	}
	if debaters < seats {
		return Verdict{Reason: ReasonSeatsNotFull, ParticipantID: self.ID}
	}

	if in.CurrentRound >= in.MaxRounds && models.TurnsInRound(in.Turns, in.MaxRounds) >= debaters {
		return Verdict{Reason: ReasonRoundExhausted, ParticipantID: self.ID}
	}

	for _, t := range in.Turns {
		if t.SpeakerID == self.ID && t.RoundNumber == in.CurrentRound {
			return Verdict{Reason: ReasonAlreadySubmittedThisRound, ParticipantID: self.ID}
		}
	}

	return Verdict{CanSubmit: true, ParticipantID: self.ID}
}

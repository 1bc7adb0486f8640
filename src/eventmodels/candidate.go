package eventmodels

// Candidate is a contract day that passed the screen. Rank is 1-based.
type Candidate struct {
	ContractDay
	Rank  int
	Score float64
}

type CandidateDTO struct {
	ContractDayDTO
	Rank        int     `csv:"rank" json:"rank"`
	Score       float64 `csv:"score" json:"score"`
	SpreadToMid string  `csv:"spread_to_mid" json:"spread_to_mid,omitempty"`
}

func (c *Candidate) ToDTO() *CandidateDTO {
	spread := ""
	if s, ok := c.SpreadToMid(); ok {
		spread = formatFloat(s)
	}

	return &CandidateDTO{
		ContractDayDTO: *c.ContractDay.ToDTO(),
		Rank:           c.Rank,
		Score:          c.Score,
		SpreadToMid:    spread,
	}
}

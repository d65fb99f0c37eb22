package analysis

import (
	"strings"

	"github.com/frahmantamala/financial-analyst/internal/core/common/validation"
)

type QuestionDTO struct {
	Question string `json:"question"`
}

func (d *QuestionDTO) Normalize() {
	d.Question = strings.TrimSpace(d.Question)
}

func (d QuestionDTO) Validate() error {
	if err := validation.ValidateQuestion(d.Question); err != nil {
		return err
	}
	return nil
}

type AnswerResponse struct {
	CompanyID int64  `json:"company_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

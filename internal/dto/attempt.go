package dto

type ExamMetaDTO struct {
	ID               int    `json:"id" example:"7"`
	Title            string `json:"title" example:"Go basics"`
	Price            int    `json:"price" example:"30"`
	IsFree           bool   `json:"is_free" example:"false"`
	QuestionsToServe int    `json:"questions_to_serve" example:"20"`
}

type AttemptResponseDTO struct {
	AttemptID   int    `json:"attempt_id" example:"42"`
	ExamID      int    `json:"exam_id" example:"7"`
	Status      string `json:"status" example:"IN_PROGRESS"`
	CreditsUsed int    `json:"credits_used" example:"30"`
	QuestionIDs []int  `json:"question_ids"`
	Resumed     bool   `json:"resumed,omitempty" example:"false"`
	StartedAt   string `json:"started_at" example:"2024-05-01T12:00:00Z"`
	FinishedAt  string `json:"finished_at,omitempty" example:"2024-05-01T13:00:00Z"`

	Exam *ExamMetaDTO `json:"exam,omitempty"`
}

type FinishAttemptRequestDTO struct {
	Status string `json:"status" example:"COMPLETED"`
}

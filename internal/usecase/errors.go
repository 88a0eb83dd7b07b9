package usecase

import "errors"

// Códigos dos erros de domínio. Cada um vira um status HTTP no dispatcher.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeServerError  = "SERVER_ERROR"
)

// Mensagens fixas devolvidas ao cliente.
const (
	MsgInvalidParams    = "Parâmetros inválidos."
	MsgLeadNotFound     = "Lead não encontrada."
	MsgLeadExists       = "Já existe uma lead com esse ID."
	MsgAlreadyConverted = "Essa lead já foi atualizada."
	MsgServerError      = "Erro no servidor."

	MsgLeadCreated   = "Lead criada!"
	MsgLeadConverted = "Lead atualizada!"
	MsgLeadDeleted   = "Lead deletada!"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// CodeOf devolve o código do DomainError na cadeia, ou "" se não houver.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

func InvalidInputError() error {
	return &DomainError{Code: CodeInvalidInput, Message: MsgInvalidParams}
}

func NotFoundError() error {
	return &DomainError{Code: CodeNotFound, Message: MsgLeadNotFound}
}

func ConflictError(message string) error {
	return &DomainError{Code: CodeConflict, Message: message}
}

func ServerError() error {
	return &DomainError{Code: CodeServerError, Message: MsgServerError}
}

package i18n

var ptBRMessages = map[Code]string{
	CodeUnknown:                 "Ocorreu um erro inesperado. Tente novamente mais tarde.",
	CodeValidationFailed:        "Alguns campos são inválidos. Revise-os e tente novamente.",
	CodeProposalAlreadyExists:   "Já existe uma proposta para este documento.",
	CodeDocumentKindUnsupported: "Propostas para documentos {{.DocumentKind}} não são aceitas.",
	CodeEligibilityUnavailable:  "Não foi possível enviar sua proposta para análise. Ela foi salva e será avaliada.",
	CodeIntakeBusy:              "Estamos recebendo muitas propostas agora. Nada foi salvo, tente novamente.",
	CodeProposalIDMissing:       "O id da proposta é obrigatório.",
	CodeProposalNotFound:        "Proposta não encontrada.",
}

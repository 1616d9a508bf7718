package bot

// User-facing reply texts. The bot speaks Brazilian Portuguese to match its
// target community.
const (
	textWelcome = "Você foi cadastrado com sucesso!\n\n" +
		"Utilize o comando /gerar para obter o seu link de convite. " +
		"Caso você tenha sido convidado por alguém, por favor, me envie o link de convite que você recebeu."

	textAlreadyRegistered = "Você já está cadastrado. Você deve utilizar o comando /gerar para obter seu link de convite. " +
		"Se você foi convidado por alguém, me envie o link de convite pelo qual você foi convidado para eu o validar."

	textNotRegistered = "Você não está cadastrado no sistema. Utilize o comando /start para se cadastrar."

	textMustBeMemberGenerate = "Você deve ser membro do grupo para gerar um link de convite."
	textMustBeMemberConfirm  = "Você deve ser membro do grupo para confirmar um convite. Clique no link."
	textMustBeMemberResolve  = "Você deve ser membro do grupo para confirmar um convite. " +
		"Retorne ao grupo ou entre primeiro clicando no link."

	textLinkCreated  = "Seu link de convite foi cadastrado e é: %s"
	textLinkExisting = "Seu link de convite já foi gerado anteriormente e é: %s\n\n" +
		"Caso ele não esteja funcionando, notifique a administração pois aconteceu uma limitação do Telegram!"
	textLinkError = "Erro ao criar link de convite (notificar a administração)."

	textInvalidInvite = "Este link de convite não é válido."
	textSelfInvite    = "Você não pode confirmar um convite gerado por você mesmo."

	textClaimPrompt = `Este link foi gerado por <a href="tg://user?id=%d">%s (%s)</a>. ` +
		"Deseja confirmar o vínculo? Clique abaixo!"
	textPromptYes = "Sim, este foi o usuário que me convidou!"
	textPromptNo  = "Não, eu não reconheço este usuário!"

	textCallbackConfirmed = "Vínculo confirmado!\n\n" +
		"Que tal você mesmo gerar seu link de convite para você participar também? Utilize o comando /gerar!"
	textCallbackDenied = "Vínculo negado! Você pode tentar novamente com outro link de convite."
	textCallbackDup    = "Você já confirmou um convite anteriormente! Cada usuário pode confirmar apenas um convite."
	textCallbackDone   = "Este convite já foi resolvido."

	textStatusLine = "Status do convite: %s"

	textIssuerConfirmed = `Seu convite para <a href="tg://user?id=%d">%s (%s)</a> foi confirmado!`
	textIssuerDenied    = `O usuário <a href="tg://user?id=%d">%s (%s)</a> tentou utilizar o seu link de convite mas negou a confirmação!`

	textNotAuthorized = "Apenas administradores podem consultar o ranking."
	textNoRanking     = "Não há dados suficientes para exibir o ranking."

	textSomethingWrong = "Algo deu errado ao processar sua solicitação. Tente novamente em instantes."

	textRateLimited = "Calma! Você está enviando mensagens rápido demais."
)

// statusPT maps internal status values to the user-facing wording.
func statusPT(status string) string {
	switch status {
	case "confirmed":
		return "confirmado"
	case "denied":
		return "negado"
	default:
		return "pendente"
	}
}

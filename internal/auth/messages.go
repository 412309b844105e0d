package auth

import (
	"golang.org/x/text/language"
)

// Operation selects field mappings and the fallback message.
type Operation string

const (
	OpLogin          Operation = "login"
	OpRegister       Operation = "register"
	OpForgotPassword Operation = "forgotPassword"
	OpResetPassword  Operation = "resetPassword"
	OpGeneral        Operation = "general"
)

const (
	MessageTypeField   = "field"
	MessageTypeGeneral = "general"
)

// Message is the user-facing rendering of an auth failure.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type catalog struct {
	messages  map[Code]string
	overrides map[Operation]map[Code]string
	defaults  map[Operation]string
}

var supportedLanguages = []language.Tag{
	language.English,
	language.Portuguese,
}

var matcher = language.NewMatcher(supportedLanguages)

var catalogs = map[language.Tag]catalog{
	language.English: {
		messages: map[Code]string{
			CodeUserNotFound:      "Incorrect email or password",
			CodeWrongPassword:     "Incorrect email or password",
			CodeInvalidCredential: "Incorrect email or password",
			CodeTooManyRequests:   "Too many attempts. Try again later.",
			CodeInvalidEmail:      "Invalid email",
			CodeEmailAlreadyInUse: "This email is already in use",
			CodeWeakPassword:      "Password is too weak",
			CodeNetworkFailed:     "Network error. Check your connection and try again.",
			CodeInvalidActionCode: "This reset link is invalid or has expired",
			CodeUnauthenticated:   "You need to sign in to continue",
		},
		overrides: map[Operation]map[Code]string{
			OpForgotPassword: {
				CodeUserNotFound: "We could not find an account created with this email",
			},
		},
		defaults: map[Operation]string{
			OpLogin:          "Could not sign in. Try again.",
			OpRegister:       "Could not create the account. Try again.",
			OpForgotPassword: "Could not send the recovery email. Try again.",
			OpResetPassword:  "Could not reset the password. Try again.",
			OpGeneral:        "Unexpected error. Try again.",
		},
	},
	language.Portuguese: {
		messages: map[Code]string{
			CodeUserNotFound:      "Email ou senha incorretos",
			CodeWrongPassword:     "Email ou senha incorretos",
			CodeInvalidCredential: "Email ou senha incorretos",
			CodeTooManyRequests:   "Muitas tentativas. Tente novamente mais tarde.",
			CodeInvalidEmail:      "Email inválido",
			CodeEmailAlreadyInUse: "Este email já está em uso",
			CodeWeakPassword:      "Senha muito fraca",
			CodeNetworkFailed:     "Erro de conexão. Verifique sua internet e tente novamente.",
			CodeInvalidActionCode: "Este link de recuperação é inválido ou expirou",
			CodeUnauthenticated:   "Faça login para continuar",
		},
		overrides: map[Operation]map[Code]string{
			OpForgotPassword: {
				CodeUserNotFound: "Não encontramos uma conta criada com este email",
			},
		},
		defaults: map[Operation]string{
			OpLogin:          "Erro ao fazer login. Tente novamente.",
			OpRegister:       "Erro ao criar conta. Tente novamente.",
			OpForgotPassword: "Erro ao enviar email de recuperação. Tente novamente.",
			OpResetPassword:  "Erro ao redefinir a senha. Tente novamente.",
			OpGeneral:        "Erro inesperado. Tente novamente.",
		},
	},
}

var fieldMappings = map[Operation]map[Code]string{
	OpLogin: {
		CodeInvalidEmail: "email",
	},
	OpRegister: {
		CodeWeakPassword: "password",
		CodeInvalidEmail: "email",
	},
	OpForgotPassword: {
		CodeInvalidEmail: "email",
	},
	OpResetPassword: {
		CodeWeakPassword: "password",
	},
}

// MatchLanguage picks the best supported language for an Accept-Language
// header. English is the fallback.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supportedLanguages[idx]
}

// Describe renders code for op in lang. Codes mapped to a form field come
// back as field messages; everything else is general.
func Describe(op Operation, code Code, lang language.Tag) Message {
	cat, ok := catalogs[lang]
	if !ok {
		cat = catalogs[language.English]
	}

	text, known := cat.overrides[op][code]
	if !known {
		text, known = cat.messages[code]
	}
	if !known {
		text, ok = cat.defaults[op]
		if !ok {
			text = cat.defaults[OpGeneral]
		}
	}

	if field, ok := fieldMappings[op][code]; ok {
		return Message{Type: MessageTypeField, Message: text, Field: field}
	}
	return Message{Type: MessageTypeGeneral, Message: text}
}

// DescribeError is Describe for an error value; errors without a code get
// the operation's default message.
func DescribeError(op Operation, err error, lang language.Tag) (Code, Message) {
	code, _ := CodeOf(err)
	return code, Describe(op, code, lang)
}

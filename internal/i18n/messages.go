package i18n

import (
	"strconv"

	"github.com/yukikurage/todo-app/internal/constants"
)

// Message keys shared by services and handlers.
const (
	KeyInternal       = "errors.internal"
	KeyUnauthorized   = "errors.unauthorized"
	KeyNotFound       = "errors.notFound"
	KeyRateLimited    = "errors.rateLimited"
	KeyInvalidRequest = "errors.invalidRequest"

	KeyEmailInvalid        = "auth.errors.emailInvalid"
	KeyUsernameMin         = "auth.errors.usernameMin"
	KeyUsernameMax         = "auth.errors.usernameMax"
	KeyDisplayNameRequired = "auth.errors.displayNameRequired"
	KeyPasswordMin         = "auth.errors.passwordMin"
	KeyPasswordsNoMatch    = "auth.errors.passwordsNoMatch"
	KeyEmailExists         = "auth.errors.emailExists"
	KeyUsernameExists      = "auth.errors.usernameExists"
	KeyInvalidCredentials  = "auth.errors.invalidCredentials"
	KeyResetUserNotFound   = "auth.errors.userNotFound"
	KeyRegistered          = "auth.registered"
	KeyLoggedOut           = "auth.loggedOut"
	KeyResetUserFound      = "auth.resetUserFound"
	KeyPasswordReset       = "auth.passwordReset"

	KeyTextRequired           = "todo.errors.textRequired"
	KeyTextTooLong            = "todo.errors.textTooLong"
	KeyDueDateRequired        = "todo.errors.dueDateRequired"
	KeyDueDateInvalid         = "todo.errors.dueDateInvalid"
	KeyDueDatePast            = "todo.errors.dueDatePast"
	KeyPriorityInvalid        = "todo.errors.priorityInvalid"
	KeySuggestionsUnavailable = "todo.errors.suggestionsUnavailable"
	KeyTodoDeleted            = "todo.deleted"

	KeyDisplayNameTooLong = "profile.errors.displayNameTooLong"
	KeyInvalidFileType    = "profile.errors.invalidFileType"
	KeyFileTooLarge       = "profile.errors.fileTooLarge"
	KeyUploadFailed       = "profile.errors.uploadFailed"
	KeyInvalidURL         = "profile.errors.invalidUrl"
	KeyProfileUpdated     = "profile.updated"
)

// messages holds the catalog per locale. {0} placeholders are filled by
// universal-translator parameters.
var messages = map[string]map[string]string{
	"en": {
		KeyInternal:       "Something went wrong. Please try again later.",
		KeyUnauthorized:   "Please sign in to continue.",
		KeyNotFound:       "The requested item was not found.",
		KeyRateLimited:    "Too many requests. Please slow down.",
		KeyInvalidRequest: "The request could not be understood.",

		KeyEmailInvalid:        "Enter a valid email address.",
		KeyUsernameMin:         "Username must be at least {0} characters.",
		KeyUsernameMax:         "Username must be at most {0} characters.",
		KeyDisplayNameRequired: "Display name is required.",
		KeyPasswordMin:         "Password must be at least {0} characters.",
		KeyPasswordsNoMatch:    "Passwords do not match.",
		KeyEmailExists:         "An account with this email already exists.",
		KeyUsernameExists:      "This username is already taken.",
		KeyInvalidCredentials:  "Invalid email/username or password.",
		KeyResetUserNotFound:   "No account matches that email or username.",
		KeyRegistered:          "Account created. You can sign in now.",
		KeyLoggedOut:           "You have been signed out.",
		KeyResetUserFound:      "Account found. Choose a new password.",
		KeyPasswordReset:       "Your password has been changed. You can sign in now.",

		KeyTextRequired:           "Todo text is required.",
		KeyTextTooLong:            "Todo must be {0} characters or less.",
		KeyDueDateRequired:        "Due date is required.",
		KeyDueDateInvalid:         "Enter the due date as YYYY-MM-DD.",
		KeyDueDatePast:            "Due date cannot be in the past.",
		KeyPriorityInvalid:        "Priority must be Important, Medium or Easy.",
		KeySuggestionsUnavailable: "Suggestions are not available right now.",
		KeyTodoDeleted:            "Todo deleted.",

		KeyDisplayNameTooLong: "Display name must be {0} characters or less.",
		KeyInvalidFileType:    "Please upload an image file.",
		KeyFileTooLarge:       "The image must be 2 MB or smaller.",
		KeyUploadFailed:       "Failed to update profile. Please try again.",
		KeyInvalidURL:         "Enter a valid URL.",
		KeyProfileUpdated:     "Profile updated.",
	},
	"ru": {
		KeyInternal:       "Что-то пошло не так. Попробуйте позже.",
		KeyUnauthorized:   "Войдите, чтобы продолжить.",
		KeyNotFound:       "Запрошенный элемент не найден.",
		KeyRateLimited:    "Слишком много запросов. Попробуйте чуть позже.",
		KeyInvalidRequest: "Не удалось разобрать запрос.",

		KeyEmailInvalid:        "Введите корректный адрес электронной почты.",
		KeyUsernameMin:         "Имя пользователя должно содержать не менее {0} символов.",
		KeyUsernameMax:         "Имя пользователя должно содержать не более {0} символов.",
		KeyDisplayNameRequired: "Укажите отображаемое имя.",
		KeyPasswordMin:         "Пароль должен содержать не менее {0} символов.",
		KeyPasswordsNoMatch:    "Пароли не совпадают.",
		KeyEmailExists:         "Пользователь с таким email уже существует.",
		KeyUsernameExists:      "Это имя пользователя уже занято.",
		KeyInvalidCredentials:  "Неверный email/имя пользователя или пароль.",
		KeyResetUserNotFound:   "Аккаунт с таким email или именем пользователя не найден.",
		KeyRegistered:          "Аккаунт создан. Теперь вы можете войти.",
		KeyLoggedOut:           "Вы вышли из аккаунта.",
		KeyResetUserFound:      "Аккаунт найден. Задайте новый пароль.",
		KeyPasswordReset:       "Пароль изменён. Теперь вы можете войти.",

		KeyTextRequired:           "Введите текст задачи.",
		KeyTextTooLong:            "Задача должна содержать не более {0} символов.",
		KeyDueDateRequired:        "Укажите срок выполнения.",
		KeyDueDateInvalid:         "Укажите срок в формате ГГГГ-ММ-ДД.",
		KeyDueDatePast:            "Срок не может быть в прошлом.",
		KeyPriorityInvalid:        "Приоритет должен быть: важно, средне или легко.",
		KeySuggestionsUnavailable: "Подсказки сейчас недоступны.",
		KeyTodoDeleted:            "Задача удалена.",

		KeyDisplayNameTooLong: "Отображаемое имя должно содержать не более {0} символов.",
		KeyInvalidFileType:    "Загрузите файл изображения.",
		KeyFileTooLarge:       "Размер изображения не должен превышать 2 МБ.",
		KeyUploadFailed:       "Не удалось обновить профиль. Попробуйте ещё раз.",
		KeyInvalidURL:         "Введите корректный URL.",
		KeyProfileUpdated:     "Профиль обновлён.",
	},
}

// defaultParams fills the placeholders of keys whose values are fixed limits.
var defaultParams = map[string][]string{
	KeyUsernameMin:        {strconv.Itoa(constants.MinUsernameLength)},
	KeyUsernameMax:        {strconv.Itoa(constants.MaxUsernameLength)},
	KeyPasswordMin:        {strconv.Itoa(constants.MinPasswordLength)},
	KeyTextTooLong:        {strconv.Itoa(constants.MaxTodoTextLength)},
	KeyDisplayNameTooLong: {strconv.Itoa(constants.MaxDisplayNameLength)},
}

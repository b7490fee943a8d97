// Package iocli ввод-вывод консольных команд: сообщения, цветной статус
// и чтение пароля без эха.
package iocli

// IO ввод-вывод команды
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Success(format string, a ...any)
	Warn(format string, a ...any)
	Heading(text string)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}

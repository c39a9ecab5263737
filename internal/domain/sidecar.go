package domain

type Sidecar struct {
	Name       string
	Content    string
	Executable bool
}

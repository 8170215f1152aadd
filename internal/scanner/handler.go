package scanner

// Handler recibe cada archivo encontrado por el recorrido.
// Devolver un error aborta el recorrido.
type Handler interface {
	Handle(path, name string) error
}

// HandlerFunc adapta una función a Handler.
type HandlerFunc func(path, name string) error

func (f HandlerFunc) Handle(path, name string) error { return f(path, name) }

// Collector acumula las rutas en orden de aparición.
// OnFound, si no es nil, recibe el número de archivos acumulados.
type Collector struct {
	Paths   []string
	OnFound func(count int)
}

func (c *Collector) Handle(path, _ string) error {
	c.Paths = append(c.Paths, path)
	if c.OnFound != nil {
		c.OnFound(len(c.Paths))
	}
	return nil
}

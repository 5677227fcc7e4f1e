package ioc

import "fmt"

type MapContainer struct {
	name    string
	order   []string
	storage map[string]Object
}

func (m *MapContainer) RegisterContainer(name string, obj Object) {
	if _, ok := m.storage[name]; !ok {
		m.order = append(m.order, name)
	}
	m.storage[name] = obj
}

func (m *MapContainer) GetMapContainer(name string) any {
	obj, ok := m.storage[name]
	if !ok {
		return nil
	}
	return obj
}

func (m *MapContainer) Init() error {
	for _, name := range m.order {
		if err := m.storage[name].Init(); err != nil {
			return fmt.Errorf("%s: init %s: %w", m.name, name, err)
		}
	}
	return nil
}

package ioc

// NewContainer 创建按注册顺序初始化的容器
func NewContainer(name string) Container {
	return &MapContainer{
		name:    name,
		storage: make(map[string]Object),
	}
}

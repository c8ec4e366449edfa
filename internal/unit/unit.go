// Package unit は名前付きのデータ変換を登録・検索する仕組みを提供します
package unit

import (
	"sort"
	"sync"
)

// Unit はバイト列をバイト列へ変換する処理のインターフェース
type Unit interface {
	Name() string
	Process(data []byte) ([]byte, error)
}

// UnitFunc は関数をUnitとして登録するためのアダプタです
type UnitFunc struct {
	UnitName string
	Func     func(data []byte) ([]byte, error)
}

// Name は登録名を返します
func (u UnitFunc) Name() string {
	return u.UnitName
}

// Process は変換を実行します
func (u UnitFunc) Process(data []byte) ([]byte, error) {
	return u.Func(data)
}

var (
	mu       sync.Mutex
	registry = make(map[string]Unit)
)

// Register はユニットを登録します。同名の登録は上書きされます
func Register(u Unit) {
	mu.Lock()
	defer mu.Unlock()
	registry[u.Name()] = u
}

// Lookup は登録済みのユニットを名前で検索します
func Lookup(name string) (Unit, bool) {
	mu.Lock()
	defer mu.Unlock()
	u, ok := registry[name]
	return u, ok
}

// Names は登録済みのユニット名を昇順で返します
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

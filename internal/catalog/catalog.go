package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Mnaffeti/sovd-server/internal/uds"
	"github.com/Mnaffeti/sovd-server/pkg/apperr"
)

// Catalog はコンポーネント別のサービス定義を保持する読み取り専用レジストリ。
// 起動時にLoadまたはNewDefaultで構築した後は変更しない。
type Catalog struct {
	components map[string]*componentEntry
	order      []string // 一覧応答の表示順（定義順）
}

// Load はJSONファイルからカタログを構築する。pathが空の場合は組込み定義を返す。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return NewDefault(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc catalogFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return build(doc)
}

// catalogFile はカタログJSONのトップレベル構造。
type catalogFile struct {
	Components []componentDef `json:"components"`
}

type componentDef struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   uint16     `json:"address"`
	DataItems []DataItem `json:"data_items"`
	Actuators []Actuator `json:"actuators"`
}

func build(doc catalogFile) (*Catalog, error) {
	c := &Catalog{components: make(map[string]*componentEntry, len(doc.Components))}
	for i := range doc.Components {
		def := &doc.Components[i]
		if def.ID == "" {
			return nil, fmt.Errorf("%w: component with empty id", apperr.ErrInvalidRequest)
		}
		if _, dup := c.components[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate component id %q", apperr.ErrInvalidRequest, def.ID)
		}

		entry := &componentEntry{
			Component: Component{ID: def.ID, Name: def.Name, Address: def.Address},
			DataItems: make(map[string]*DataItem, len(def.DataItems)),
			Actuators: make(map[string]*Actuator, len(def.Actuators)),
		}
		for j := range def.DataItems {
			item := &def.DataItems[j]
			if _, dup := entry.DataItems[item.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate data item %q in %q", apperr.ErrInvalidRequest, item.ID, def.ID)
			}
			entry.DataItems[item.ID] = item
		}
		for j := range def.Actuators {
			act := &def.Actuators[j]
			if _, dup := entry.Actuators[act.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate actuator %q in %q", apperr.ErrInvalidRequest, act.ID, def.ID)
			}
			entry.Actuators[act.ID] = act
		}
		c.components[def.ID] = entry
		c.order = append(c.order, def.ID)
	}
	return c, nil
}

// Components は定義順のコンポーネント一覧を返す。
func (c *Catalog) Components() []Component {
	out := make([]Component, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.components[id].Component)
	}
	return out
}

// Component はIDでコンポーネント定義を引く。
func (c *Catalog) Component(id string) (*Component, error) {
	entry, ok := c.components[id]
	if !ok {
		return nil, fmt.Errorf("%w: component %q", apperr.ErrComponentNotFound, id)
	}
	return &entry.Component, nil
}

// DataItems はコンポーネントのデータ項目一覧をID昇順で返す。
// categoriesを指定した場合は該当分類のみ返す。
func (c *Catalog) DataItems(componentID string, categories ...DataCategory) ([]DataItem, error) {
	entry, ok := c.components[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: component %q", apperr.ErrComponentNotFound, componentID)
	}

	out := make([]DataItem, 0, len(entry.DataItems))
	for _, item := range entry.DataItems {
		if len(categories) > 0 && !containsCategory(categories, item.Category) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsCategory(set []DataCategory, cat DataCategory) bool {
	for _, c := range set {
		if c == cat {
			return true
		}
	}
	return false
}

// Resolve は(コンポーネント, 操作種別, 論理ID)の組をServiceBindingに解決する。
// 定義が存在しない組合せは ErrUnknownOperation または ErrNotFound になる。
func (c *Catalog) Resolve(componentID string, kind OperationKind, logicalID string) (*ServiceBinding, error) {
	entry, ok := c.components[componentID]
	if !ok {
		return nil, fmt.Errorf("%w: component %q", apperr.ErrComponentNotFound, componentID)
	}

	binding := &ServiceBinding{Component: &entry.Component, Kind: kind}
	switch kind {
	case OpReadData:
		item, ok := entry.DataItems[logicalID]
		if !ok {
			return nil, fmt.Errorf("%w: data item %q on %q", apperr.ErrNotFound, logicalID, componentID)
		}
		binding.ServiceID = uds.ServiceReadDataByIdentifier
		binding.DataItem = item

	case OpWriteData:
		item, ok := entry.DataItems[logicalID]
		if !ok {
			return nil, fmt.Errorf("%w: data item %q on %q", apperr.ErrNotFound, logicalID, componentID)
		}
		if !item.Writable {
			return nil, fmt.Errorf("%w: data item %q is read-only", apperr.ErrUnknownOperation, logicalID)
		}
		binding.ServiceID = uds.ServiceWriteDataByIdentifier
		binding.DataItem = item

	case OpControlActuator:
		act, ok := entry.Actuators[logicalID]
		if !ok {
			return nil, fmt.Errorf("%w: actuator %q on %q", apperr.ErrNotFound, logicalID, componentID)
		}
		binding.ServiceID = uds.ServiceRoutineControl
		binding.Actuator = act

	case OpReadDTC:
		binding.ServiceID = uds.ServiceReadDTCInformation

	case OpClearDTC:
		binding.ServiceID = uds.ServiceClearDiagnosticInformation

	case OpSessionControl:
		binding.ServiceID = uds.ServiceDiagnosticSessionControl

	case OpSecurityAccess:
		binding.ServiceID = uds.ServiceSecurityAccess

	case OpEcuReset:
		binding.ServiceID = uds.ServiceECUReset

	default:
		return nil, fmt.Errorf("%w: operation kind %q", apperr.ErrUnknownOperation, kind)
	}
	return binding, nil
}

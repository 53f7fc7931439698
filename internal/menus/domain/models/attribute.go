package models

type AttributeKind string

const (
	KindEmotion AttributeKind = "emotion"
	KindTexture AttributeKind = "texture"
	KindShape   AttributeKind = "shape"
)

var AttributeKinds = []AttributeKind{KindEmotion, KindTexture, KindShape}

// Table is the catalog table holding the kind.
func (k AttributeKind) Table() string {
	return string(k) + "s"
}

// JoinTable links dishes to the kind, JoinColumn is its foreign key there.
func (k AttributeKind) JoinTable() string {
	return "dish_" + string(k) + "s"
}

func (k AttributeKind) JoinColumn() string {
	return string(k) + "_id"
}

type Attribute struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

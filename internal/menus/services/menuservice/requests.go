package menuservice

import "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"

type MenuRequest struct {
	Title       string `json:"title"       validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// DishRequest is used for create and partial update. A nil field is left
// unchanged on update. Colors replaces all three color slots and
// color1..color3 are applied on top of it, "" clearing a slot.
type DishRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Section     *string  `json:"section"     validate:"omitempty,max=200"`
	Bitter      *int     `json:"bitter"      validate:"omitempty,min=0,max=5"`
	Salty       *int     `json:"salty"       validate:"omitempty,min=0,max=5"`
	Sour        *int     `json:"sour"        validate:"omitempty,min=0,max=5"`
	Sweet       *int     `json:"sweet"       validate:"omitempty,min=0,max=5"`
	Umami       *int     `json:"umami"       validate:"omitempty,min=0,max=5"`
	Fat         *int     `json:"fat"         validate:"omitempty,min=0,max=5"`
	Piquant     *int     `json:"piquant"     validate:"omitempty,min=0,max=5"`
	Temperature *int     `json:"temperature"`
	Color1      *string  `json:"color1"      validate:"omitempty,iscolor"`
	Color2      *string  `json:"color2"      validate:"omitempty,iscolor"`
	Color3      *string  `json:"color3"      validate:"omitempty,iscolor"`
	Colors      []string `json:"colors"      validate:"omitempty,max=3,dive,iscolor"`
	EmotionIDs  []int64  `json:"emotion_ids" validate:"omitempty,dive,gt=0"` //nolint:tagliatelle
	TextureIDs  []int64  `json:"texture_ids" validate:"omitempty,dive,gt=0"` //nolint:tagliatelle
	ShapeIDs    []int64  `json:"shape_ids"   validate:"omitempty,dive,gt=0"` //nolint:tagliatelle
}

func (r DishRequest) attributeIDs() models.AttributeIDs {
	return models.AttributeIDs{
		Emotions: r.EmotionIDs,
		Textures: r.TextureIDs,
		Shapes:   r.ShapeIDs,
	}
}

// apply copies every present field onto d.
func (r DishRequest) apply(d *models.Dish) {
	setString(&d.Name, r.Name)
	setString(&d.Description, r.Description)
	setString(&d.Section, r.Section)

	setInt(&d.Bitter, r.Bitter)
	setInt(&d.Salty, r.Salty)
	setInt(&d.Sour, r.Sour)
	setInt(&d.Sweet, r.Sweet)
	setInt(&d.Umami, r.Umami)
	setInt(&d.Fat, r.Fat)
	setInt(&d.Piquant, r.Piquant)
	setInt(&d.Temperature, r.Temperature)

	if r.Colors != nil {
		d.ColorSlots = [models.MaxColors]string{}
		copy(d.ColorSlots[:], r.Colors)
	}

	for i, c := range [models.MaxColors]*string{r.Color1, r.Color2, r.Color3} {
		setString(&d.ColorSlots[i], c)
	}

	d.Colors = models.CompactColors(d.ColorSlots)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu   UserState = "main_menu"   // В главном меню, изображение не выбрано
	StateImageReady UserState = "image_ready" // Изображение выбрано, можно запускать детекцию
	StateProcessing UserState = "processing"  // Идёт детекция
)

// ImageSource откуда взято текущее изображение
type ImageSource string

const (
	ImageSourceNone    ImageSource = ""
	ImageSourceUpload  ImageSource = "upload"
	ImageSourceExample ImageSource = "example"
)

// User сессия пользователя: состояние и текущее изображение.
// Детектор сессию не видит, изображение передаётся ему явно.
type User struct {
	ID          int64        // Telegram User ID
	ChatID      int64        // Telegram Chat ID
	State       UserState    // Текущее состояние пользователя
	Image       *RasterImage // Текущее изображение, nil если не выбрано
	ImageSource ImageSource  // Источник текущего изображения
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SelectImage делает изображение текущим
func (u *User) SelectImage(img *RasterImage, source ImageSource) {
	u.Image = img
	u.ImageSource = source
	u.State = StateImageReady
}

// ClearImage сбрасывает текущее изображение и возвращает в главное меню
func (u *User) ClearImage() {
	u.Image = nil
	u.ImageSource = ImageSourceNone
	u.State = StateMainMenu
}

// HasImage true, если изображение выбрано
func (u *User) HasImage() bool {
	return u.Image != nil
}

package i18n

import "github.com/hitoshi/newsman/internal/model"

// 成功レスポンスのメッセージキー。
const (
	KeySignupCreated   = "signup.created"
	KeyPasswordChanged = "password.changed"
	KeyBookmarkRemoved = "bookmark.removed"
	KeyHistoryRecorded = "history.recorded"
	KeyProfileUploaded = "profile.uploaded"
)

var indonesian = map[string]Message{
	model.ErrCodeTokenMissing: {
		Text:   "Token akses diperlukan.",
		Action: "Masuk lalu ulangi permintaan.",
	},
	model.ErrCodeTokenInvalid: {
		Text:   "Token akses tidak valid atau sudah kedaluwarsa.",
		Action: "Masuk kembali untuk mendapatkan token baru.",
	},
	model.ErrCodeUnauthenticated: {
		Text:   "Autentikasi diperlukan.",
		Action: "Masuk lalu ulangi permintaan.",
	},
	model.ErrCodeValidation: {
		Text:   "Input tidak valid: %s",
		Action: "Periksa kembali isian lalu coba lagi.",
		Param:  "reason",
	},
	model.ErrCodeTitleRequired: {
		Text:   "Judul artikel wajib diisi.",
		Action: "Sertakan judul artikel dalam permintaan.",
	},
	model.ErrCodeImageRequired: {
		Text:   "Tidak ada gambar yang dikirim.",
		Action: "Pilih gambar lalu unggah kembali.",
	},
	model.ErrCodeInvalidImage: {
		Text:   "Gambar tidak valid: %s",
		Action: "Unggah gambar JPEG, PNG, atau GIF.",
		Param:  "reason",
	},
	model.ErrCodeInvalidCategory: {
		Text:   "Kategori berita tidak dikenal: %s",
		Action: "Gunakan salah satu dari business, technology, health, science, sports, entertainment, world.",
		Param:  "category",
	},
	model.ErrCodeEmailTaken: {
		Text:   "Pengguna sudah terdaftar.",
		Action: "Masuk dengan akun yang ada atau gunakan email lain.",
	},
	model.ErrCodeBookmarkExists: {
		Text:   "Artikel sudah ada di bookmark.",
		Action: "Buka daftar bookmark untuk menemukan artikel.",
	},
	model.ErrCodeBookmarkNotFound: {
		Text:   "Bookmark tidak ditemukan.",
		Action: "Muat ulang daftar bookmark lalu coba lagi.",
	},
	model.ErrCodeUserNotFound: {
		Text:   "Pengguna tidak ditemukan.",
		Action: "Periksa alamat email atau daftar terlebih dahulu.",
	},
	model.ErrCodeAccountNotFound: {
		Text:   "Pengguna tidak ditemukan.",
		Action: "Masuk kembali.",
	},
	model.ErrCodeInvalidPassword: {
		Text:   "Kata sandi salah.",
		Action: "Periksa kata sandi lalu coba lagi.",
	},
	model.ErrCodeWrongOldPassword: {
		Text:   "Kata sandi lama salah.",
		Action: "Masukkan kata sandi saat ini dengan benar.",
	},
	model.ErrCodeStorage: {
		Text:   "Terjadi kesalahan internal.",
		Action: "Silakan coba lagi nanti.",
	},
	model.ErrCodeInternal: {
		Text:   "Terjadi kesalahan internal.",
		Action: "Silakan coba lagi nanti.",
	},
	model.ErrCodeRateLimited: {
		Text:   "Terlalu banyak permintaan.",
		Action: "Tunggu sebentar lalu coba lagi.",
	},

	KeySignupCreated:   {Text: "Pengguna berhasil dibuat"},
	KeyPasswordChanged: {Text: "Kata sandi berhasil diubah"},
	KeyBookmarkRemoved: {Text: "Bookmark berhasil dihapus"},
	KeyHistoryRecorded: {Text: "Riwayat baca disimpan"},
	KeyProfileUploaded: {Text: "Foto profil berhasil diunggah"},
}

package database

// seedMovie describes one catalogue entry inserted at startup.  Each
// movie occupies its own studio, so studio numbers are unique across
// the catalogue.
type seedMovie struct {
	Title        string
	Description  string
	StudioNumber int
	ReleaseDate  string // YYYY-MM-DD
	Genres       []string
}

var sampleMovies = []seedMovie{
	{
		Title:        "The Dark Knight",
		Description:  "Batman menghadapi Joker, seorang kriminal jenius yang ingin menjerumuskan Gotham ke dalam kekacauan.",
		StudioNumber: 1,
		ReleaseDate:  "2008-07-18",
		Genres:       []string{"Action", "Crime"},
	},
	{
		Title:        "Up",
		Description:  "Seorang kakek menerbangkan rumahnya dengan ribuan balon untuk mewujudkan janji kepada mendiang istrinya.",
		StudioNumber: 2,
		ReleaseDate:  "2009-05-29",
		Genres:       []string{"Animation", "Family"},
	},
	{
		Title:        "Inception",
		Description:  "Pencuri ulung menyusup ke dalam mimpi untuk menanamkan sebuah ide di benak targetnya.",
		StudioNumber: 3,
		ReleaseDate:  "2010-07-16",
		Genres:       []string{"Action", "Sci-Fi"},
	},
	{
		Title:        "Laskar Pelangi",
		Description:  "Sepuluh anak Belitung berjuang menempuh pendidikan di sekolah yang nyaris ditutup.",
		StudioNumber: 4,
		ReleaseDate:  "2008-09-26",
		Genres:       []string{"Drama"},
	},
	{
		Title:        "Spirited Away",
		Description:  "Chihiro tersesat di dunia roh dan harus bekerja di pemandian ajaib untuk menyelamatkan orang tuanya.",
		StudioNumber: 5,
		ReleaseDate:  "2001-07-20",
		Genres:       []string{"Animation", "Fantasy"},
	},
}

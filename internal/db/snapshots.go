package db

// Snapshot table names. Every table is fully replaced on each run.
const (
	TableRawHistory          = "raw_history"
	TableCleanHistory        = "clean_history"
	TableTracks              = "tracks"
	TableTrackArtists        = "track_artists"
	TableArtists             = "artists"
	TableArtistGenres        = "artist_genres"
	TableAlbums              = "albums"
	TableAlbumArtists        = "album_artists"
	TableAudioFeatures       = "audio_features"
	TableArtistAudioFeatures = "artist_audio_features"
	TableAlbumAudioFeatures  = "album_audio_features"
)

// SnapshotTables lists every table the pipeline produces, in stage order.
var SnapshotTables = []string{
	TableRawHistory,
	TableCleanHistory,
	TableTracks,
	TableTrackArtists,
	TableArtists,
	TableArtistGenres,
	TableAlbums,
	TableAlbumArtists,
	TableAudioFeatures,
	TableArtistAudioFeatures,
	TableAlbumAudioFeatures,
}

// RawHistoryTable builds the raw_history snapshot.
func RawHistoryTable(events []RawEvent) *Table {
	t := &Table{
		Name: TableRawHistory,
		Columns: []Column{
			{Name: "ts", Type: Text},
			{Name: "platform", Type: Text},
			{Name: "ms_played", Type: Integer},
			{Name: "master_metadata_track_name", Type: Text, Nullable: true},
			{Name: "master_metadata_album_artist_name", Type: Text, Nullable: true},
			{Name: "master_metadata_album_album_name", Type: Text, Nullable: true},
			{Name: "reason_start", Type: Text, Nullable: true},
			{Name: "reason_end", Type: Text, Nullable: true},
			{Name: "shuffle", Type: Boolean, Nullable: true},
			{Name: "track_id", Type: Text},
		},
		Rows: make([][]any, 0, len(events)),
	}
	for _, e := range events {
		t.Rows = append(t.Rows, []any{
			e.TS,
			e.Platform,
			e.MsPlayed,
			nullString(e.TrackName),
			nullString(e.ArtistName),
			nullString(e.AlbumName),
			nullString(e.ReasonStart),
			nullString(e.ReasonEnd),
			nullBool(e.Shuffle),
			e.TrackID,
		})
	}
	return t
}

// CleanHistoryTable builds the clean_history snapshot.
func CleanHistoryTable(events []CleanEvent) *Table {
	t := &Table{
		Name: TableCleanHistory,
		Columns: []Column{
			{Name: "platform", Type: Text},
			{Name: "ms_played", Type: Integer},
			{Name: "master_metadata_track_name", Type: Text, Nullable: true},
			{Name: "master_metadata_album_artist_name", Type: Text, Nullable: true},
			{Name: "master_metadata_album_album_name", Type: Text, Nullable: true},
			{Name: "reason_start", Type: Text, Nullable: true},
			{Name: "reason_end", Type: Text, Nullable: true},
			{Name: "shuffle", Type: Boolean, Nullable: true},
			{Name: "track_id", Type: Text},
			{Name: "datetime", Type: Timestamp},
			{Name: "stream_date", Type: Text},
			{Name: "stream_time", Type: Text},
			{Name: "stream_year", Type: Integer},
			{Name: "stream_month", Type: Integer},
			{Name: "stream_day", Type: Integer},
		},
		Rows: make([][]any, 0, len(events)),
	}
	for _, e := range events {
		t.Rows = append(t.Rows, []any{
			e.Platform,
			e.MsPlayed,
			nullString(e.TrackName),
			nullString(e.ArtistName),
			nullString(e.AlbumName),
			nullString(e.ReasonStart),
			nullString(e.ReasonEnd),
			nullBool(e.Shuffle),
			e.TrackID,
			e.Datetime,
			e.StreamDate,
			e.StreamTime,
			int64(e.StreamYear),
			int64(e.StreamMonth),
			int64(e.StreamDay),
		})
	}
	return t
}

// TracksTable builds the tracks snapshot.
func TracksTable(tracks []Track) *Table {
	t := &Table{
		Name: TableTracks,
		Columns: []Column{
			{Name: "name", Type: Text},
			{Name: "album_id", Type: Text},
			{Name: "popularity", Type: Integer},
			{Name: "disc_number", Type: Integer},
			{Name: "track_number", Type: Integer},
			{Name: "track_id", Type: Text},
			{Name: "explicit", Type: Boolean},
			{Name: "external_urls", Type: Text},
			{Name: "duration_ms", Type: Integer},
			{Name: "ms_played", Type: Integer},
		},
		Rows: make([][]any, 0, len(tracks)),
	}
	for _, tr := range tracks {
		t.Rows = append(t.Rows, []any{
			tr.Name,
			tr.AlbumID,
			tr.Popularity,
			tr.DiscNumber,
			tr.TrackNumber,
			tr.ID,
			tr.Explicit,
			tr.ExternalURLs,
			tr.DurationMs,
			tr.MsPlayed,
		})
	}
	return t
}

// TrackArtistsTable builds the track_artists join snapshot.
func TrackArtistsTable(links []TrackArtist) *Table {
	t := &Table{
		Name: TableTrackArtists,
		Columns: []Column{
			{Name: "track_id", Type: Text},
			{Name: "artist_id", Type: Text},
		},
		Rows: make([][]any, 0, len(links)),
	}
	for _, l := range links {
		t.Rows = append(t.Rows, []any{l.TrackID, l.ArtistID})
	}
	return t
}

// ArtistsTable builds the artists snapshot.
func ArtistsTable(artists []Artist) *Table {
	t := &Table{
		Name: TableArtists,
		Columns: []Column{
			{Name: "name", Type: Text},
			{Name: "popularity", Type: Integer},
			{Name: "artist_id", Type: Text},
			{Name: "external_urls", Type: Text},
			{Name: "followers", Type: Integer},
			{Name: "ms_played", Type: Integer},
		},
		Rows: make([][]any, 0, len(artists)),
	}
	for _, a := range artists {
		t.Rows = append(t.Rows, []any{
			a.Name,
			a.Popularity,
			a.ID,
			a.ExternalURLs,
			a.Followers,
			a.MsPlayed,
		})
	}
	return t
}

// ArtistGenresTable builds the artist_genres join snapshot.
func ArtistGenresTable(links []ArtistGenre) *Table {
	t := &Table{
		Name: TableArtistGenres,
		Columns: []Column{
			{Name: "artist_id", Type: Text},
			{Name: "genre", Type: Text},
		},
		Rows: make([][]any, 0, len(links)),
	}
	for _, l := range links {
		t.Rows = append(t.Rows, []any{l.ArtistID, l.Genre})
	}
	return t
}

// AlbumsTable builds the albums snapshot.
func AlbumsTable(albums []Album) *Table {
	t := &Table{
		Name: TableAlbums,
		Columns: []Column{
			{Name: "name", Type: Text},
			{Name: "type", Type: Text},
			{Name: "num_tracks", Type: Integer},
			{Name: "album_id", Type: Text},
			{Name: "external_urls", Type: Text},
			{Name: "popularity", Type: Integer},
			{Name: "images", Type: Text, Nullable: true},
			{Name: "release_date", Type: Text},
			{Name: "release_date_precision", Type: Text},
			{Name: "release_year", Type: Text, Nullable: true},
			{Name: "release_month", Type: Text, Nullable: true},
			{Name: "release_day", Type: Text, Nullable: true},
			{Name: "ms_played", Type: Integer},
		},
		Rows: make([][]any, 0, len(albums)),
	}
	for _, a := range albums {
		t.Rows = append(t.Rows, []any{
			a.Name,
			a.Type,
			a.NumTracks,
			a.ID,
			a.ExternalURLs,
			a.Popularity,
			nullString(a.Image),
			a.ReleaseDate,
			a.ReleaseDatePrecision,
			nullString(a.ReleaseYear),
			nullString(a.ReleaseMonth),
			nullString(a.ReleaseDay),
			a.MsPlayed,
		})
	}
	return t
}

// AlbumArtistsTable builds the album_artists join snapshot.
func AlbumArtistsTable(links []AlbumArtist) *Table {
	t := &Table{
		Name: TableAlbumArtists,
		Columns: []Column{
			{Name: "album_id", Type: Text},
			{Name: "artist_id", Type: Text},
		},
		Rows: make([][]any, 0, len(links)),
	}
	for _, l := range links {
		t.Rows = append(t.Rows, []any{l.AlbumID, l.ArtistID})
	}
	return t
}

// AudioFeaturesTable builds the audio_features snapshot.
func AudioFeaturesTable(features []AudioFeatures) *Table {
	t := &Table{
		Name: TableAudioFeatures,
		Columns: []Column{
			{Name: "track_id", Type: Text},
			{Name: "acousticness", Type: Real},
			{Name: "analysis_url", Type: Text},
			{Name: "danceability", Type: Real},
			{Name: "duration_ms", Type: Integer},
			{Name: "energy", Type: Real},
			{Name: "instrumentalness", Type: Real},
			{Name: "key", Type: Integer},
			{Name: "liveness", Type: Real},
			{Name: "loudness", Type: Real},
			{Name: "mode", Type: Integer},
			{Name: "speechiness", Type: Real},
			{Name: "tempo", Type: Real},
			{Name: "time_signature", Type: Integer},
			{Name: "valence", Type: Real},
		},
		Rows: make([][]any, 0, len(features)),
	}
	for _, f := range features {
		t.Rows = append(t.Rows, []any{
			f.TrackID,
			f.Acousticness,
			f.AnalysisURL,
			f.Danceability,
			f.DurationMs,
			f.Energy,
			f.Instrumentalness,
			f.Key,
			f.Liveness,
			f.Loudness,
			f.Mode,
			f.Speechiness,
			f.Tempo,
			f.TimeSignature,
			f.Valence,
		})
	}
	return t
}

// FeatureAggregateTable builds a per-owner feature mean snapshot such as
// artist_audio_features (ownerColumn artist_id).
func FeatureAggregateTable(name, ownerColumn string, rows []FeatureAggregate) *Table {
	cols := make([]Column, 0, len(FeatureColumns)+1)
	cols = append(cols, Column{Name: ownerColumn, Type: Text})
	for _, c := range FeatureColumns {
		cols = append(cols, Column{Name: c, Type: Real})
	}

	t := &Table{Name: name, Columns: cols, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		row := make([]any, 0, len(cols))
		row = append(row, r.OwnerID)
		for _, m := range r.Means {
			row = append(row, m)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

package schema

// Options holds the table options of a game. Field semantics follow
// hanab.live's server/src/options.go.
type Options struct {
	Variant               Variant
	StartingPlayer        PlayerIndex
	Timed                 bool
	TimeBase              int
	TimePerTurn           int
	Speedrun              bool
	CardCycle             bool
	DeckPlays             bool
	EmptyClues            bool
	OneExtraCard          bool
	OneLessCard           bool
	AllOrNothing          bool
	DetrimentalCharacters bool
}

// DefaultOptions returns the options used when the wire record omits them.
func DefaultOptions() Options {
	return Options{Variant: NoVariant}
}

// optionField binds one Options field to its wire key. The table below is the
// single source of option wire names for both decoding and encoding.
type optionField struct {
	wire   string
	decode func(d *Decoder, o *Options, v any, path string) error
	encode func(o Options) any
}

func boolOption(wire string, field func(*Options) *bool) optionField {
	return optionField{
		wire: wire,
		decode: func(_ *Decoder, o *Options, v any, path string) error {
			b, err := asBool(v, path)
			if err != nil {
				return err
			}
			*field(o) = b
			return nil
		},
		encode: func(o Options) any { return *field(&o) },
	}
}

func intOption(wire string, field func(*Options) *int) optionField {
	return optionField{
		wire: wire,
		decode: func(_ *Decoder, o *Options, v any, path string) error {
			n, err := asInt(v, path)
			if err != nil {
				return err
			}
			*field(o) = n
			return nil
		},
		encode: func(o Options) any { return *field(&o) },
	}
}

var optionFields = []optionField{
	{
		wire: "variant",
		decode: func(d *Decoder, o *Options, v any, path string) error {
			variant, err := d.decodeVariant(v, path)
			if err != nil {
				return err
			}
			o.Variant = variant
			return nil
		},
		encode: func(o Options) any { return string(o.Variant) },
	},
	intOption("startingPlayer", func(o *Options) *int { return &o.StartingPlayer }),
	boolOption("timed", func(o *Options) *bool { return &o.Timed }),
	intOption("timeBase", func(o *Options) *int { return &o.TimeBase }),
	intOption("timePerTurn", func(o *Options) *int { return &o.TimePerTurn }),
	boolOption("speedrun", func(o *Options) *bool { return &o.Speedrun }),
	boolOption("cardCycle", func(o *Options) *bool { return &o.CardCycle }),
	boolOption("deckPlays", func(o *Options) *bool { return &o.DeckPlays }),
	boolOption("emptyClues", func(o *Options) *bool { return &o.EmptyClues }),
	boolOption("oneExtraCard", func(o *Options) *bool { return &o.OneExtraCard }),
	boolOption("oneLessCard", func(o *Options) *bool { return &o.OneLessCard }),
	boolOption("allOrNothing", func(o *Options) *bool { return &o.AllOrNothing }),
	boolOption("detrimentalCharacters", func(o *Options) *bool { return &o.DetrimentalCharacters }),
}

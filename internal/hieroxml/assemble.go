package hieroxml

import (
	"path/filepath"
	"strconv"
	"strings"

	"hroxgen/internal/document"
	"hroxgen/internal/identity"
	"hroxgen/internal/probe"
)

// Options carries the document-level knobs that are not part of the entity
// graph itself.
type Options struct {
	ProjectDirectory string
	TargetRelease    string
	TargetVersion    string
}

const (
	defaultTargetRelease = "12.2v2"
	defaultTargetVersion = "11"
)

func (o *Options) normalize() {
	if o.TargetRelease == "" {
		o.TargetRelease = defaultTargetRelease
	}
	if o.TargetVersion == "" {
		o.TargetVersion = defaultTargetVersion
	}
}

// Assemble builds the full hieroXML node tree from the entity graph. The
// section order is fixed: Media, Project, UIState, TrackItemLinkGroups,
// trackItemCollection.
func Assemble(graph *document.Graph, opts Options) *Node {
	opts.normalize()
	asm := &assembler{graph: graph, opts: opts}

	root := newNode("hieroXML",
		a("name", "NukeStudio"),
		a("version", opts.TargetVersion),
		a("revision", "0"),
		a("release", opts.TargetRelease))

	asm.mediaSection(root)
	asm.projectSection(root)
	asm.uiState(root)
	asm.linkGroups(root)
	asm.trackItemCollection(root)
	return root
}

type assembler struct {
	graph *document.Graph
	opts  Options
}

func (asm *assembler) issue(kind identity.Kind) string {
	return asm.graph.IDs.Issue(kind)
}

type setValue struct {
	tag   string
	name  string
	value string
	def   string
}

func sv(tag, name, value string) setValue {
	return setValue{tag: tag, name: name, value: value, def: "1"}
}

func valueSet(parent *Node, title, domain string, values []setValue) {
	set := parent.child("Set", a("title", title), a("domainroot", domain))
	list := set.child("values")
	for _, v := range values {
		list.child(v.tag, a("name", v.name), a("value", v.value), a("default", v.def))
	}
}

// --- Media section ---

func (asm *assembler) mediaSection(root *Node) {
	media := root.child("Media")
	for _, source := range asm.graph.Sources {
		attrs := []Attr{
			a("file", source.DisplayPath),
			a("objName", "media"),
			a("name", source.Name),
			a("guid", source.GUID),
		}
		if source.FramesKnown {
			attrs = append(attrs, ai("duration", source.Frames))
		}
		element := media.child("Source", attrs...)
		asm.mediaSets(element, source)
		asm.mediaTimes(element, source)
		asm.mediaLayers(element, source)
	}
	for _, placement := range asm.graph.Placements() {
		asm.clipEntry(media, placement)
	}
}

func (asm *assembler) mediaSets(parent *Node, source *document.Source) {
	meta := source.Meta
	sets := parent.child("sets")
	path := filepath.ToSlash(source.Path)
	base := filepath.Base(path)

	var frames int64
	if source.FramesKnown {
		frames = source.Frames
	}

	valueSet(sets, "Media", "foundry.source", []setValue{
		sv("WeakObjRefValue", "foundry.source.umid", meta.UMID),
		sv("StringValue", "foundry.source.umidOriginator", "foundry.source.umid"),
		sv("IntegerValue", "foundry.source.width", strconv.Itoa(meta.Width)),
		sv("IntegerValue", "foundry.source.height", strconv.Itoa(meta.Height)),
		sv("IntegerValue", "foundry.source.duration", strconv.FormatInt(frames, 10)),
		sv("TimeBaseValue", "foundry.source.framerate", meta.FrameRate),
		sv("TimeBaseValue", "foundry.source.samplerate", meta.Samplerate),
		sv("IntegerValue", "foundry.source.starttime", "0"),
		sv("IntegerValue", "foundry.source.timecode", strconv.FormatInt(meta.TimecodeFrames, 10)),
		sv("BooleanValue", "foundry.source.timecodedropframe", "No"),
		sv("IntegerValue", "foundry.source.bitsperchannel", strconv.Itoa(meta.BitsPerChannel)),
		sv("IntegerValue", "foundry.source.fragments", "1"),
		sv("StringValue", "foundry.source.path", path),
		sv("StringValue", "foundry.source.shortfilename", base),
		sv("StringValue", "foundry.source.filename", base),
		sv("FloatValue", "foundry.source.pixelAspect", formatFloat(meta.PixelAspect)),
		sv("IntegerValue", "foundry.source.shoottime", "4294967295"),
		sv("StringValue", "foundry.source.reelID", ""),
		sv("StringValue", "foundry.source.type", meta.MediaTypeLabel),
		sv("StringValue", "foundry.source.channelformat", meta.ChannelFormat),
		sv("StringValue", "foundry.source.layers", meta.Layers),
		sv("IntegerValue", "foundry.source.bitmapsize", strconv.FormatInt(meta.FileSize, 10)),
		sv("StringValue", "foundry.source.pixelformat", meta.PixelFormatDesc),
	})

	valueSet(sets, "media.input", "media.input", []setValue{
		sv("StringValue", "media.input.bitsperchannel", meta.BitsPerChannelLabel),
		sv("StringValue", "media.input.ctime", meta.CreationTime),
		sv("StringValue", "media.input.filename", path),
		sv("StringValue", "media.input.filereader", meta.FileReader),
		sv("IntegerValue", "media.input.filesize", strconv.FormatInt(meta.FileSize, 10)),
		sv("IntegerValue", "media.input.frame", "1"),
		sv("FloatValue", "media.input.frame_rate", formatFloat(meta.FrameRateValue)),
		sv("IntegerValue", "media.input.height", strconv.Itoa(meta.Height)),
		sv("StringValue", "media.input.mtime", meta.ModificationTime),
		sv("FloatValue", "media.input.pixel_aspect", formatFloat(meta.PixelAspect)),
		sv("StringValue", "media.input.timecode", meta.TimecodeDisplay),
		sv("IntegerValue", "media.input.width", strconv.Itoa(meta.Width)),
	})

	if !isQuickTimeFamily(meta.FileExtension) {
		return
	}

	valueSet(sets, "media.quicktime", "media.quicktime", []setValue{
		sv("StringValue", "media.quicktime.codec_id", meta.CodecID),
		sv("StringValue", "media.quicktime.codec_name", meta.CodecName),
		sv("StringValue", "media.quicktime.encoder", meta.Encoder),
		sv("StringValue", "media.quicktime.nclc_matrix", meta.ColorMatrix),
		sv("StringValue", "media.quicktime.nclc_primaries", meta.ColorPrimaries),
		sv("StringValue", "media.quicktime.nclc_transfer_function", meta.ColorTransfer),
	})
	valueSet(sets, "media.quicktime.thefoundry", "media.quicktime.thefoundry", []setValue{
		sv("StringValue", "media.quicktime.thefoundry.Application", meta.QuickTimeApp),
		sv("StringValue", "media.quicktime.thefoundry.ApplicationVersion", meta.QuickTimeAppVersion),
		sv("StringValue", "media.quicktime.thefoundry.Colorspace", meta.QuickTimeColorspace),
		sv("StringValue", "media.quicktime.thefoundry.Writer", meta.QuickTimeWriter),
		sv("StringValue", "media.quicktime.thefoundry.YCbCrMatrix", meta.QuickTimeMatrix),
	})
	valueSet(sets, "uk.co.thefoundry", "uk.co.thefoundry", []setValue{
		sv("StringValue", "uk.co.thefoundry.Application", meta.QuickTimeApp),
		sv("StringValue", "uk.co.thefoundry.ApplicationVersion", meta.QuickTimeAppVersion),
		sv("StringValue", "uk.co.thefoundry.Colorspace", meta.QuickTimeColorspace),
		sv("StringValue", "uk.co.thefoundry.Writer", meta.QuickTimeWriter),
		sv("StringValue", "uk.co.thefoundry.YCbCrMatrix", meta.QuickTimeMatrix),
	})
	valueSet(sets, "QuickTime", "com.apple.quicktime", []setValue{
		sv("StringValue", "com.apple.quicktime.codec", meta.QuickTimeCodec),
	})
}

func isQuickTimeFamily(ext string) bool {
	switch ext {
	case ".mov", ".mp4", ".m4v":
		return true
	}
	return false
}

func (asm *assembler) mediaTimes(parent *Node, source *document.Source) {
	basen, based := splitRatio(source.Meta.FrameRate)
	var frames int64
	if source.FramesKnown {
		frames = source.Frames
	}
	times := parent.child("times")
	mapItem := times.child("MediaDesc_TimeInfo_MapItem")
	desc := mapItem.child("MediaDesc",
		a("objName", "k"),
		a("channelIndex", "0"),
		a("streamIndex", "-1"),
		a("outputChannel", "-2"))
	desc.child("MediaFlags", a("objName", "flags"), a("allone", "1"))
	desc.child("MediaType", a("type", "0"), a("objName", "type"))
	mapItem.child("TimeInfo",
		a("objName", "v"),
		ai("basen", basen),
		ai("based", based),
		ai("duration", frames),
		a("in", "0"))
}

func (asm *assembler) mediaLayers(parent *Node, source *document.Source) {
	meta := source.Meta
	alpha := ""
	if meta.HasAlpha {
		alpha = "a"
	}
	layers := parent.child("Layers")
	layers.child("Layer",
		a("layerName", meta.Layers),
		a("layerTypeName", meta.LayerTypeName),
		a("ch0", "r"),
		a("ch1", "g"),
		a("ch2", "b"),
		a("ch3", alpha))
}

func (asm *assembler) clipEntry(media *Node, placement *document.Placement) {
	meta := placement.Source.Meta
	clip := media.child("Clip",
		a("name", placement.Name),
		a("guid", placement.ClipGUID),
		a("timeOffset", "0"),
		ai("timecodeStart", meta.TimecodeFrames),
		a("objName", "media"),
		a("displayDropFrames", "0"),
		a("displayTimecode", "1"),
		a("useSoftTrims", "0"),
		a("timeDisplayFormat", "0"))

	videotracks := clip.child("videotracks")
	track := videotracks.child("VideoTrack",
		a("name", "Video 1"),
		a("guid", asm.issue(identity.KindTrack)),
		a("height", "40"),
		a("collapsed", "0"))
	track.child("trackItems").child("TrackItem",
		a("link", "internal"),
		a("guid", placement.SourceItemGUID))
	trackEnabledSet(track)

	asm.clipSets(clip, placement)
	asm.clipNode(clip, placement)
}

func (asm *assembler) clipSets(clip *Node, placement *document.Placement) {
	project := asm.graph.Project
	meta := placement.Source.Meta
	width, height := dimensionsOr(meta, 2048, 1152)

	sets := clip.child("sets")
	duration := sv("IntegerValue", "foundry.timeline.duration", strconv.FormatInt(placement.TimelineDuration, 10))
	duration.def = "0"
	valueSet(sets, "Timeline", "foundry.timeline", []setValue{
		sv("TimeBaseValue", "foundry.timeline.framerate", project.Framerate.String()),
		sv("TimeBaseValue", "foundry.timeline.samplerate", project.Samplerate.String()),
		duration,
		sv("IntegerValue", "foundry.timeline.poster", "0"),
		sv("StringValue", "foundry.timeline.posterLayer", "colour"),
		sv("MediaFormatValue", "foundry.timeline.outputformat", outputFormat(width, height)),
	})
	valueSet(sets, "Media", "foundry.source", []setValue{
		sv("StringValue", "foundry.source.reelID", ""),
	})
}

// clipNode writes the embedded Read node script that Nuke Studio uses to load
// the clip media.
func (asm *assembler) clipNode(clip *Node, placement *document.Placement) {
	meta := placement.Source.Meta
	width, height := dimensionsOr(meta, 2048, 1152)
	duration := placement.TimelineDuration
	if duration == 0 {
		duration = placement.SourceDuration
	}
	extension := strings.TrimPrefix(meta.FileExtension, ".")
	if extension == "" {
		extension = "mov"
	}
	lines := []string{
		"Read {",
		" inputs 0",
		" file_type " + extension,
		" file " + filepath.ToSlash(placement.Source.Path),
		" format \"" + strconv.Itoa(width) + " " + strconv.Itoa(height) + " 0 0 " +
			strconv.Itoa(width) + " " + strconv.Itoa(height) + " 1 \"",
		" last " + strconv.FormatInt(duration, 10),
		" origlast " + strconv.FormatInt(duration, 10),
		" origset true",
		" name " + placement.Name + "_1",
		"}",
	}
	clip.text("node", strings.Join(lines, "\n"))
}

// --- Project section ---

func (asm *assembler) projectSection(root *Node) {
	project := asm.graph.Project
	naming := asm.graph.Naming

	element := root.child("Project",
		a("project_directory", asm.opts.ProjectDirectory),
		a("samplerate", project.Samplerate.String()),
		a("framerate", project.Framerate.String()),
		a("name", naming.Project),
		a("guid", asm.issue(identity.KindBin)),
		ai("starttimecode", project.TimecodeStart),
		a("viewerLut", project.ViewerLUT),
		a("ocioConfigName", project.OCIOConfig),
		a("nukeUseOCIO", "1"),
		a("timelineReformatType", "Disabled"),
		a("timelineReformatCenter", "1"),
		a("timelineReformatResizeType", "Width"),
		a("timedisplayformat", "0"),
		a("HeroView", "0"),
		a("shotPresetName", "Basic Nuke Shot With Annotations"),
		a("buildTrackName", "VFX"),
		a("exportRootPathMode", "ProjectDirectory"),
		a("ocioConfigCustom", "0"),
		a("posterFrameSetting", "First"),
		a("posterCustomFrame", "0"),
		a("useViewColors", "0"),
		a("logLut", "compositing_log"),
		a("floatLut", "scene_linear"),
		a("sixteenBitLut", "texture_paint"),
		a("eightBitLut", "matte_paint"),
		a("workingSpace", "scene_linear"),
		a("thumbnailLut", "ACES/Rec.709"),
		a("linkTrackItemVersions", "1"),
		a("redVideoDecodeMode", "0"),
		a("customExportRootPath", ""),
		a("ocioconfigpath", ""),
		a("editable", "1"))

	sequencesGUID, tagsGUID := asm.projectItems(element)

	binMetadata(element, "-1")
	element.child("RootBinProjectItem",
		a("objName", "sequencesBin"),
		a("link", "internal"),
		a("guid", sequencesGUID))
	element.child("RootBinProjectItem",
		a("objName", "tagsBin"),
		a("link", "internal"),
		a("guid", tagsGUID))

	width, height := asm.projectResolution()
	element.child("MediaFormatValue",
		a("objName", "outputformat"),
		a("name", ""),
		a("value", outputFormat(width, height)),
		a("default", "0"))

	element.child("Views").child("View", a("name", "main"), a("color", "#ffffff"))
}

func (asm *assembler) projectItems(project *Node) (string, string) {
	items := project.child("items")

	sequencesGUID := asm.issue(identity.KindBin)
	sequencesRoot := items.child("RootBinProjectItem",
		a("name", "Sequences"),
		a("guid", sequencesGUID),
		a("editable", "1"))
	binMetadata(sequencesRoot, "13")
	sequencesItems := sequencesRoot.child("items")

	platesBin := sequencesItems.child("BinProjectItem",
		a("name", "plates"),
		a("guid", asm.issue(identity.KindBin)),
		a("editable", "1"))
	binMetadata(platesBin, "")
	platesItems := platesBin.child("items")
	asm.sequenceProjectItem(platesItems)
	asm.clipBins(platesItems)

	tagsGUID := asm.issue(identity.KindBin)
	tagsRoot := items.child("RootBinProjectItem",
		a("name", "Tags"),
		a("guid", tagsGUID),
		a("editable", "1"))
	binMetadata(tagsRoot, "17")

	return sequencesGUID, tagsGUID
}

// clipBins groups clip project items into episode and scene bins derived from
// the per-clip naming context.
func (asm *assembler) clipBins(parent *Node) {
	episodeItems := make(map[string]*Node)
	sceneItems := make(map[string]*Node)
	for _, placement := range asm.graph.Placements() {
		episode := placement.Context.Episode
		scene := placement.Context.Scene

		epItems, ok := episodeItems[episode]
		if !ok {
			bin := parent.child("BinProjectItem",
				a("name", episode),
				a("guid", asm.issue(identity.KindBin)),
				a("editable", "1"))
			binMetadata(bin, "")
			epItems = bin.child("items")
			episodeItems[episode] = epItems
		}

		sceneKey := episode + "/" + scene
		scItems, ok := sceneItems[sceneKey]
		if !ok {
			bin := epItems.child("BinProjectItem",
				a("name", episode+"_"+scene),
				a("guid", asm.issue(identity.KindBin)),
				a("editable", "1"))
			binMetadata(bin, "")
			scItems = bin.child("items")
			sceneItems[sceneKey] = scItems
		}

		asm.clipProjectItem(scItems, placement)
	}
}

func (asm *assembler) clipProjectItem(parent *Node, placement *document.Placement) {
	root := parent.child("SequenceProjectItemRoot",
		a("name", placement.Name+" Copy"),
		a("guid", asm.issue(identity.KindBin)),
		a("MasterVersion", filepath.ToSlash(placement.Source.Path)),
		a("editable", "1"))
	version := root.child("items").child("SequenceProjectItemVersion",
		a("name", placement.Name),
		a("guid", asm.issue(identity.KindBin)),
		a("isHidden", "0"),
		a("editable", "1"))
	version.child("Clip",
		a("guid", placement.ClipGUID),
		a("link", "internal"),
		a("objName", "sequence"))
	root.child("Clip",
		a("guid", placement.ClipGUID),
		a("link", "internal"),
		a("objName", "sequence"))
	root.text("ActiveItemIndex", "0")
	root.child("TimelineProjectItem", a("objName", "Snapshots"), a("name", ""), a("editable", "1"))
}

func (asm *assembler) sequenceProjectItem(parent *Node) {
	graph := asm.graph
	naming := graph.Naming

	masterVersion := ""
	if placements := graph.Placements(); len(placements) > 0 {
		masterVersion = filepath.ToSlash(placements[0].Source.Path)
	}

	root := parent.child("SequenceProjectItemRoot",
		a("name", naming.Episode),
		a("guid", graph.SequenceRootGUID),
		a("MasterVersion", masterVersion),
		a("editable", "1"))
	version := root.child("items").child("SequenceProjectItemVersion",
		a("name", naming.Episode),
		a("guid", graph.SequenceVersionGUID),
		a("isHidden", "0"),
		a("editable", "1"))

	sequence := version.child("Sequence",
		a("timeOffset", "0"),
		a("displayTimecode", "1"),
		a("objName", "sequence"),
		a("name", naming.Episode),
		ai("timecodeStart", graph.Project.TimecodeStart),
		a("displayDropFrames", "0"),
		a("useSoftTrims", "0"),
		a("guid", graph.SequenceGUID),
		a("timeDisplayFormat", "0"))
	asm.sequenceTracks(sequence)
	asm.sequenceAudio(sequence)
	asm.sequenceSets(sequence)

	root.child("Sequence",
		a("objName", "sequence"),
		a("link", "internal"),
		a("guid", graph.SequenceGUID))
	root.text("ActiveItemIndex", "0")
	root.child("TimelineProjectItem", a("objName", "Snapshots"), a("name", ""), a("editable", "1"))
}

func (asm *assembler) sequenceTracks(sequence *Node) {
	videotracks := sequence.child("videotracks")
	primary := asm.primaryTrack()

	guid := asm.issue(identity.KindTrack)
	if primary != nil {
		guid = primary.GUID
	}
	track := videotracks.child("VideoTrack",
		a("name", asm.graph.PrimaryTrack),
		a("height", "40"),
		a("guid", guid),
		a("collapsed", "0"))
	trackItems := track.child("trackItems")
	if primary != nil {
		for _, item := range primary.Items {
			trackItems.child("TrackItem", a("link", "internal"), a("guid", item.GUID))
		}
	}
	trackEnabledSet(track)
}

func (asm *assembler) sequenceAudio(sequence *Node) {
	audiotracks := sequence.child("audiotracks")
	track := audiotracks.child("AudioTrack",
		a("name", "Audio 1"),
		a("guid", asm.issue(identity.KindTrack)),
		a("height", "40"),
		a("collapsed", "0"),
		a("stereochannel", "left"),
		a("volume", "1"))
	trackEnabledSet(track)
}

func (asm *assembler) sequenceSets(sequence *Node) {
	project := asm.graph.Project
	width, height := asm.projectResolution()

	sets := sequence.child("sets")
	duration := sv("IntegerValue", "foundry.timeline.duration", strconv.FormatInt(asm.sequenceDuration(), 10))
	duration.def = "0"
	valueSet(sets, "Timeline", "foundry.timeline", []setValue{
		sv("TimeBaseValue", "foundry.timeline.framerate", project.Framerate.String()),
		sv("TimeBaseValue", "foundry.timeline.samplerate", project.Samplerate.String()),
		duration,
		sv("IntegerValue", "foundry.timeline.poster", "0"),
		sv("StringValue", "foundry.timeline.posterLayer", "colour"),
		sv("MediaFormatValue", "foundry.timeline.outputformat", outputFormat(width, height)),
	})
}

// --- UIState ---

func (asm *assembler) uiState(root *Node) {
	graph := asm.graph
	state := root.child("UIState")
	items := state.child("items")

	viewer := items.child("Viewer",
		a("audioLevel", "50"),
		a("time", "0"),
		a("audioLatencyMs", "0"),
		a("audioMute", "0"),
		a("objectname", "uk.co.thefoundry.sequenceviewer.1"),
		a("mode", "0"))
	players := viewer.child("players")
	primary := players.child("player",
		a("repeatMode", "2"),
		a("time", "0"),
		a("LUT", "ACES/Rec.709"),
		a("channels", "0"),
		a("translateX", "0"),
		a("translateY", "0"),
		a("lod", "-1"),
		a("playSpeed", "1"),
		a("scaleX", "0.5"),
		a("rotate", "0"),
		a("displayGamma", "1"),
		a("zoomMode", "2"),
		a("scaleY", "0.5"),
		a("displayGain", "1"))
	primary.child("Sequence",
		a("guid", graph.SequenceGUID),
		a("link", "internal"),
		a("objName", "timeline"))
	players.child("player",
		a("repeatMode", "0"),
		a("time", "0"),
		a("LUT", "ACES/Rec.709"),
		a("channels", "0"),
		a("translateX", "0"),
		a("translateY", "0"),
		a("lod", "-1"),
		a("playSpeed", "1"),
		a("scaleX", "0.25"),
		a("rotate", "0"),
		a("displayGamma", "1"),
		a("zoomMode", "2"),
		a("scaleY", "0.25"),
		a("displayGain", "1"))

	editor := items.child("TimelineEditor",
		a("objectname", "uk.co.thefoundry.timeline.1"),
		ai("lastVisibleTime", asm.sequenceDuration()),
		a("firstVisibleTime", "0"))
	editor.child("SequenceProjectItemVersion",
		a("guid", graph.SequenceVersionGUID),
		a("link", "internal"),
		a("objName", "timeline"))
	editor.child("Viewer",
		a("guid", asm.issue(identity.KindBin)),
		a("link", "internal"),
		a("objName", "viewer"))
}

// --- TrackItemLinkGroups and trackItemCollection ---

func (asm *assembler) linkGroups(root *Node) {
	groups := root.child("TrackItemLinkGroups")
	for _, placement := range asm.graph.Placements() {
		appendLinkGroup(groups, placement.TimelineLinkGUID, placement.GUID)
		appendLinkGroup(groups, placement.SourceLinkGUID, placement.SourceItemGUID)
	}
}

func appendLinkGroup(groups *Node, guid, trackItemGUID string) {
	group := groups.child("TrackItemLinkGroup", a("guid", guid), a("objName", "links"))
	group.child("trackItems").child("TrackItem",
		a("guid", trackItemGUID),
		a("link", "internal"))
}

func (asm *assembler) trackItemCollection(root *Node) {
	collection := root.child("trackItemCollection")
	for _, placement := range asm.graph.Placements() {
		asm.timelineTrackItem(collection, placement)
		asm.sourceTrackItem(collection, placement)
	}
}

func (asm *assembler) timelineTrackItem(collection *Node, placement *document.Placement) {
	item := collection.child("TrackItem",
		a("guid", placement.GUID),
		a("name", placement.Name+" Copy"),
		a("playbackSpeed", "1"),
		a("streamIndex", "-1"),
		a("boxSizeHeight", "200"),
		a("channelIndex", "0"),
		a("boxSizeWidth", "200"),
		ai("timelineDuration", placement.TimelineDuration),
		a("resizeType", "1"),
		a("resizeCenter", "1"),
		a("clipSequenceTrackIndex", "0"),
		a("conformScore", "0"),
		ai("timelineIn", placement.TimelineIn),
		a("type", "0"),
		a("matchdescription", ""),
		a("boxForceShape", "0"),
		a("sourceIn", "0"),
		a("boxPAR", "1"),
		a("versionlinked", "1"),
		a("enabled", "1"),
		ai("sourceDuration", placement.TimelineDuration),
		a("outputChannel", "-2"))
	trackItemBody(item, placement.TimelineLinkGUID)
	mediaInstance(item, "Clip", placement.ClipGUID)
}

func (asm *assembler) sourceTrackItem(collection *Node, placement *document.Placement) {
	item := collection.child("TrackItem",
		a("guid", placement.SourceItemGUID),
		a("name", placement.Name),
		a("playbackSpeed", "1"),
		a("streamIndex", "-1"),
		a("boxSizeHeight", "200"),
		a("channelIndex", "0"),
		a("boxSizeWidth", "200"),
		ai("timelineDuration", placement.SourceDuration),
		a("resizeType", "1"),
		a("resizeCenter", "1"),
		a("clipSequenceTrackIndex", "0"),
		a("conformScore", "0"),
		a("timelineIn", "0"),
		a("type", "1"),
		a("matchdescription", ""),
		a("boxForceShape", "0"),
		ai("sourceIn", placement.SourceIn),
		a("boxPAR", "1"),
		a("versionlinked", "0"),
		a("enabled", "1"),
		ai("sourceDuration", placement.SourceDuration),
		a("outputChannel", "-2"))
	trackItemBody(item, placement.SourceLinkGUID)
	mediaInstance(item, "Source", placement.Source.GUID)
}

func trackItemBody(item *Node, linkGUID string) {
	item.child("TrackItemLinkGroup",
		a("guid", linkGUID),
		a("link", "internal"),
		a("objName", "links"))
	item.child("MediaFlags", a("objName", "flags"), a("allone", "1"))
	item.child("MediaType", a("objName", "type"), a("type", "0"))
	item.child("Look", a("objName", "look")).child("CompositeEffect", a("objName", "effects"))
	desc := item.child("MediaDesc",
		a("channelIndex", "0"),
		a("objName", "mediatype"),
		a("streamIndex", "-1"),
		a("outputChannel", "-2"))
	desc.child("MediaFlags", a("objName", "flags"), a("allone", "1"))
	desc.child("MediaType", a("objName", "type"), a("type", "0"))
}

func mediaInstance(item *Node, tag, guid string) {
	item.child("MediaGroup", a("objName", "media")).
		child("groupdata").
		child("MediaInstance_Vector", a("quality", "0")).
		child(tag,
			a("objName", "media"),
			a("link", "internal"),
			a("guid", guid))
}

// --- shared helpers ---

func trackEnabledSet(track *Node) {
	valueSet(track.child("sets"), "Track", "foundry.track", []setValue{
		sv("BooleanValue", "foundry.track.enabled", "Yes"),
	})
}

func binMetadata(element *Node, allowedItems string) {
	element.text("BinViewType", "2")
	element.text("BinViewZoom", "70")
	element.text("BinViewSortColumnIndex", "0")
	element.text("BinViewSortOrder", "0")
	if allowedItems != "" {
		element.text("AllowedItems", allowedItems)
	}
}

func outputFormat(width, height int) string {
	w := strconv.Itoa(width)
	h := strconv.Itoa(height)
	box := "[ 0, 0, " + w + ", " + h + "]"
	return "1," + box + "," + box + ",Custom Format"
}

func dimensionsOr(meta probe.Metadata, width, height int) (int, int) {
	if meta.Width > 0 && meta.Height > 0 {
		return meta.Width, meta.Height
	}
	return width, height
}

func (asm *assembler) projectResolution() (int, int) {
	for _, source := range asm.graph.Sources {
		if source.Meta.Width > 0 && source.Meta.Height > 0 {
			return source.Meta.Width, source.Meta.Height
		}
	}
	return 2048, 1152
}

func (asm *assembler) primaryTrack() *document.Track {
	for _, track := range asm.graph.Tracks {
		if track.Name == asm.graph.PrimaryTrack {
			return track
		}
	}
	return nil
}

func (asm *assembler) sequenceDuration() int64 {
	primary := asm.primaryTrack()
	if primary == nil {
		return 0
	}
	var max int64
	for _, item := range primary.Items {
		if end := item.End(); end > max {
			max = end
		}
	}
	return max
}

// splitRatio parses "num/den" rate text into its integer parts, defaulting to
// 25/1 for anything unparsable.
func splitRatio(text string) (int64, int64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 25, 1
	}
	if left, right, found := strings.Cut(text, "/"); found {
		num, errN := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
		den, errD := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
		if errN == nil && errD == nil {
			if num < 1 {
				num = 1
			}
			if den < 1 {
				den = 1
			}
			return num, den
		}
	}
	if value, err := strconv.ParseFloat(text, 64); err == nil {
		rounded := int64(value + 0.5)
		if rounded < 1 {
			rounded = 1
		}
		return rounded, 1
	}
	return 25, 1
}

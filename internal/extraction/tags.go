package extraction

import "reclaim/internal/services/exiftool"

func allTags() []string {
	tags := make([]string, 0, len(exiftool.DateTags)+len(exiftool.DescriptiveTags))
	tags = append(tags, exiftool.DateTags...)
	tags = append(tags, exiftool.DescriptiveTags...)
	return tags
}

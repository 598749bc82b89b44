/*
Package id3 reads and writes ID3v2 tags, as well as the ID3v1 trailer
found at the end of many MP3 files.

Supported versions

This library supports reading v2.2, v2.3 and v2.4 tags, and writing
v2.3 and v2.4 tags. v2.2 frames are mapped to their v2.3 equivalents
while reading; frames without an equivalent are dropped.

Automatic upgrading

The library's internal representation of tags matches that of v2.4.
When tags with an older version are being read, they will be
automatically converted to v2.4, unless DecodeOptions asks for v2.3
or no translation at all.

One consequence of this is that when you read a file with v2.3 tags
and immediately save it, it will now be a file with valid v2.4 tags.
Set SaveOptions.Version to 3 to keep the older version.

The upgrade process makes following changes to the tags:

  - TYER, TDAT and TIME get replaced by TDRC
  - TORY gets replaced by TDOR
  - IPLS gets replaced by TIPL
  - Numeric genres in TCON get replaced by their names
  - Frames that do not exist in v2.4 get dropped

The downgrade process does the reverse where possible. TDRC is split
into TYER, TDAT and TIME, TIPL and TMCL are merged into IPLS, and
frames that only exist in v2.4 are dropped. Every dropped frame is
reported through the package logger.

When writing v2.3 tags, multiple values of a text frame are joined
with a separator, "/" by default.

Accessing and manipulating frames

Frames are stored under a hash key that combines the frame ID with
the parts that make the frame unique, such as "TXXX:description" or
"COMM:description:eng". Get, Set, Add and Delete work on these keys,
GetAll and DeleteAll on key prefixes. TextValues and SetText are
shortcuts for text frames.

Frames this package does not understand are kept in Tag.Unknown and
written back unchanged, as long as the tag is saved in the version
they were read in.

Saving

Save writes a tag back to a file. If the new tag fits into the space
of the old one, only the tag region is overwritten and the remaining
space is filled with padding. Otherwise the file is rewritten through
a temporary file, leaving the audio data untouched. SaveOptions.Padding
controls how much padding a new tag gets.
*/
package id3
